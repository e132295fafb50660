package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	echomw "github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	log "github.com/sirupsen/logrus"

	"booking-system/config"
	"booking-system/handlers"
	"booking-system/internal/gateway"
	"booking-system/internal/services"
	"booking-system/internal/store"
	"booking-system/monitoring"
	"booking-system/security"
	"booking-system/utils"
)

func Start() error {
	cfg := config.LoadConfig()
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)

	// Postgres
	db, err := store.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		return err
	}
	st := store.New(db)

	// Redis
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pn := pubnub.NewPubNub(pnConfig)

	// RabbitMQ. The email worker is optional infrastructure; a missing
	// broker degrades notifications to log lines.
	var jobs services.JobPublisher
	if cfg.RabbitURL != "" {
		rabbit, err := utils.NewRabbitPublisher(cfg.RabbitURL, cfg.EmailQueue, cfg.RabbitRetryCount)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, email jobs disabled")
		} else {
			defer rabbit.Close()
			jobs = rabbit
		}
	}

	// Services
	cache := services.NewAvailabilityCache(redisClient, cfg.AvailabilityTTL)
	notifier := services.NewDispatchNotifier(db, st.Notifications, st.Users, jobs, services.NewPubNubRealtime(pn))
	gateways := gateway.NewFactory(
		gateway.NewVNPay(cfg.VNPayTmnCode, cfg.VNPayHashSecret, cfg.VNPayURL, cfg.VNPayReturnURL),
		gateway.NewMoMo(cfg.MoMoURL),
	)

	var qr services.QRStorage
	if cfg.QRStorageURL != "" {
		qr = services.NewHTTPQRStorage(cfg.QRStorageURL)
	}

	bookingService := services.NewBookingService(
		db, st, st.Events, st.Tickets, st.Payments, st.Discounts, st.Users,
		notifier, gateways, cache, cfg.PaymentTimeout,
	)
	paymentService := services.NewPaymentService(
		db, st, st.Events, st.Tickets, st.Payments, st.Discounts, st.Users,
		notifier, gateways, qr, cfg.PaymentTimeout,
	)
	eventService := services.NewEventService(db, st.Events, cache)
	discountService := services.NewDiscountService(db, st.Discounts, st.Users)
	userService := services.NewUserService(db, st.Users, st.Notifications)

	// Background workers
	cleanup := services.NewCleanupWorker(db, st, st.Events, st.Tickets, st.Payments, cfg.CleanupInterval, cfg.TicketHoldTTL)
	go cleanup.Start(ctx)

	reminder := services.NewReminderWorker(db, st.Events, st.Tickets, notifier, cfg.ReminderInterval)
	go reminder.Start(ctx)

	listener := gateway.NewListener(pn, cfg.GatewayChannel, paymentService)
	go listener.Start(ctx)

	// Monitoring
	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
		go serveMetrics(ctx, cfg.MetricsPort)
	}

	// Handlers
	eventHandler := handlers.NewEventHandler(eventService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	discountHandler := handlers.NewDiscountHandler(discountService)
	userHandler := handlers.NewUserHandler(userService)
	rateLimiter := security.NewRateLimiter(redisClient)

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(rateLimiter.AntiBotMiddleware())

	// Public endpoints
	e.POST("/api/v1/auth/register", userHandler.Register)
	e.GET("/api/v1/events", eventHandler.ListEvents)
	e.GET("/api/v1/events/:id", eventHandler.GetEvent)
	e.GET("/api/v1/events/:id/availability", eventHandler.GetAvailability)

	// Authenticated endpoints
	api := e.Group("/api/v1", handlers.RequireUser)
	api.GET("/me", userHandler.Me)
	api.GET("/notifications", userHandler.ListNotifications)
	api.POST("/events", eventHandler.CreateEvent)
	api.POST("/bookings", bookingHandler.BookTickets, rateLimiter.BookingRateLimit(cfg.BookingRateLimit))
	api.POST("/tickets/:uuid/check-in", bookingHandler.CheckIn)
	api.GET("/payments/:id", paymentHandler.GetPayment)
	api.POST("/payments/:id/confirm", paymentHandler.ConfirmPayment)
	api.POST("/payments/pay-unpaid", paymentHandler.PayUnpaidTickets)
	api.GET("/discounts/eligible", discountHandler.EligibleDiscounts)
	api.POST("/discounts", discountHandler.CreateDiscount)

	// Test endpoint for payment simulation
	if cfg.Environment == "development" {
		e.POST("/api/v1/test/simulate-payment/:id", paymentHandler.SimulatePayment)
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy", "error": err.Error()})
		}
		if err := db.DB().Ping(); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy", "error": err.Error()})
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown")
		}
	}()

	log.WithField("port", cfg.Port).Info("server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetLevel(log.DebugLevel)
}

func serveMetrics(ctx context.Context, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.WithField("port", port).Info("metrics server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server")
	}
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("shutdown signal received, cleaning up...")
	cancel()
}
