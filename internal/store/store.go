// Package store implements postgres persistence for the booking system.
// All hot-counter mutations (event capacity, discount usage) are single
// conditional UPDATEs so concurrent requests are serialized by the
// database, never by in-process state.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pocketbase/dbx"
	log "github.com/sirupsen/logrus"

	"booking-system/config"

	_ "github.com/lib/pq"
)

// Store aggregates the per-table repositories and owns the transaction
// boundary used by the booking and confirmation flows.
type Store struct {
	DB *dbx.DB

	Events        *EventStore
	Tickets       *TicketStore
	Payments      *PaymentStore
	Discounts     *DiscountStore
	Users         *UserStore
	Notifications *NotificationStore
}

func Open(cfg config.PostgresConfig) (*dbx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.WithFields(log.Fields{"host": cfg.Host, "db": cfg.DBName}).Info("connected to postgres")
	return dbx.NewFromDB(sqlDB, "postgres"), nil
}

func New(db *dbx.DB) *Store {
	return &Store{
		DB:            db,
		Events:        &EventStore{},
		Tickets:       &TicketStore{},
		Payments:      &PaymentStore{},
		Discounts:     &DiscountStore{},
		Users:         &UserStore{},
		Notifications: &NotificationStore{},
	}
}

// RunInTx executes fn inside a single database transaction. Repository
// methods take a dbx.Builder so the same code runs against the pool or
// against the transaction handed out here.
func (s *Store) RunInTx(ctx context.Context, fn func(tx dbx.Builder) error) error {
	return s.DB.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		return fn(tx)
	})
}
