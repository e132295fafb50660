package monitoring

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var (
	bookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_attempts_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	paymentsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Successfully confirmed payments",
		},
	)

	paymentAmounts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount",
			Help:    "Confirmed payment amounts",
			Buckets: prometheus.ExponentialBuckets(10_000, 4, 10),
		},
	)

	paymentsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_expired_total",
			Help: "Pending payments cancelled by the cleanup sweep",
		},
	)

	checkIns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_check_ins_total",
			Help: "Tickets checked in at the gate",
		},
	)

	availabilityCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_cache_lookups_total",
			Help: "Availability cache lookups by result",
		},
		[]string{"result"},
	)

	eventAvailability = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_available_tickets",
			Help: "Remaining sellable tickets per event, from cache",
		},
		[]string{"event_id"},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of active goroutines",
		},
	)
)

func TrackBooking(outcome string) {
	bookingAttempts.WithLabelValues(outcome).Inc()
}

func TrackPaymentConfirmed(amount decimal.Decimal) {
	paymentsConfirmed.Inc()
	paymentAmounts.Observe(amount.InexactFloat64())
}

func TrackPaymentExpired() {
	paymentsExpired.Inc()
}

func TrackCheckIn() {
	checkIns.Inc()
}

func TrackCacheHit(hit bool) {
	if hit {
		availabilityCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	availabilityCacheLookups.WithLabelValues("miss").Inc()
}

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}
	go monitor.collectMetrics()
	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		m.collectAvailabilityMetrics(ctx)
		goroutineCount.Set(float64(runtime.NumGoroutine()))
	}
}

func (m *Monitor) collectAvailabilityMetrics(ctx context.Context) {
	keys, _ := m.redis.Keys(ctx, "availability:*").Result()
	for _, key := range keys {
		eventID := key[len("availability:"):]
		raw, err := m.redis.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var av struct {
			Available int `json:"available"`
		}
		if err := json.Unmarshal(raw, &av); err != nil {
			continue
		}
		eventAvailability.WithLabelValues(eventID).Set(float64(av.Available))
	}
}
