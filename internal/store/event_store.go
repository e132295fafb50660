package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	"booking-system/internal/status"
	"booking-system/models"
)

// EventStore is the inventory ledger: it owns the sold_tickets counter
// and is the only place that mutates it.
type EventStore struct{}

func (s *EventStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.Event, error) {
	var e models.Event
	err := db.NewQuery(`SELECT * FROM events WHERE id = {:id}`).
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		One(&e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (s *EventStore) List(ctx context.Context, db dbx.Builder, onlyActive bool) ([]*models.Event, error) {
	q := `SELECT * FROM events ORDER BY start_time ASC`
	if onlyActive {
		q = `SELECT * FROM events WHERE is_active = TRUE ORDER BY start_time ASC`
	}

	var events []*models.Event
	if err := db.NewQuery(q).WithContext(ctx).All(&events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *EventStore) Create(ctx context.Context, db dbx.Builder, e *models.Event) error {
	err := db.NewQuery(`
		INSERT INTO events
			(title, description, category, organizer_id, start_time, end_time,
			 location, ticket_price, total_tickets, is_active)
		VALUES
			({:title}, {:description}, {:category}, {:organizer}, {:start}, {:end},
			 {:location}, {:price}, {:total}, {:active})
		RETURNING id`).
		Bind(dbx.Params{
			"title":       e.Title,
			"description": e.Description,
			"category":    e.Category,
			"organizer":   e.OrganizerID,
			"start":       e.StartTime,
			"end":         e.EndTime,
			"location":    e.Location,
			"price":       e.TicketPrice,
			"total":       e.TotalTickets,
			"active":      e.IsActive,
		}).
		WithContext(ctx).
		Row(&e.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// TryReserve atomically claims qty tickets of the event's capacity.
// The capacity check and the increment are one conditional UPDATE, so
// two racing callers contending for the last ticket are serialized by
// the row write lock and only one of them matches the WHERE clause.
// Returns status.ErrSoldOut when capacity is insufficient.
func (s *EventStore) TryReserve(ctx context.Context, db dbx.Builder, eventID int64, qty int) error {
	res, err := db.NewQuery(`
		UPDATE events
		   SET sold_tickets = sold_tickets + {:qty}, updated_at = NOW()
		 WHERE id = {:id}
		   AND is_active = TRUE
		   AND sold_tickets + {:qty} <= total_tickets`).
		Bind(dbx.Params{"id": eventID, "qty": qty}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("reserve tickets: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve tickets: %w", err)
	}
	if n == 0 {
		return status.ErrSoldOut
	}
	return nil
}

// Release returns qty tickets to the event's capacity. It compensates
// a prior TryReserve when the booking it belonged to is cancelled.
func (s *EventStore) Release(ctx context.Context, db dbx.Builder, eventID int64, qty int) error {
	_, err := db.NewQuery(`
		UPDATE events
		   SET sold_tickets = sold_tickets - {:qty}, updated_at = NOW()
		 WHERE id = {:id}
		   AND sold_tickets >= {:qty}`).
		Bind(dbx.Params{"id": eventID, "qty": qty}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	return nil
}

// StartingBetween returns active events whose start time falls inside
// [from, to); used by the reminder sweep.
func (s *EventStore) StartingBetween(ctx context.Context, db dbx.Builder, from, to time.Time) ([]*models.Event, error) {
	var events []*models.Event
	err := db.NewQuery(`
		SELECT * FROM events
		 WHERE is_active = TRUE AND start_time >= {:from} AND start_time < {:to}`).
		Bind(dbx.Params{"from": from, "to": to}).
		WithContext(ctx).
		All(&events)
	if err != nil {
		return nil, fmt.Errorf("events starting between: %w", err)
	}
	return events, nil
}
