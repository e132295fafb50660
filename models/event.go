package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID           int64           `db:"id" json:"id"`
	Title        string          `db:"title" json:"title"`
	Description  string          `db:"description" json:"description"`
	Category     string          `db:"category" json:"category"`
	OrganizerID  int64           `db:"organizer_id" json:"organizer_id"`
	StartTime    time.Time       `db:"start_time" json:"start_time"`
	EndTime      time.Time       `db:"end_time" json:"end_time"`
	Location     string          `db:"location" json:"location"`
	TicketPrice  decimal.Decimal `db:"ticket_price" json:"ticket_price"`
	TotalTickets int             `db:"total_tickets" json:"total_tickets"`
	SoldTickets  int             `db:"sold_tickets" json:"sold_tickets"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// TableName is used by dbx model queries.
func (e Event) TableName() string {
	return "events"
}

// Available returns the remaining sellable capacity.
func (e *Event) Available() int {
	if n := e.TotalTickets - e.SoldTickets; n > 0 {
		return n
	}
	return 0
}

// Bookable reports whether tickets can still be issued for the event:
// it must be active and must not have started yet.
func (e *Event) Bookable(now time.Time) bool {
	return e.IsActive && e.StartTime.After(now)
}

type Availability struct {
	EventID      int64 `json:"event_id"`
	TotalTickets int   `json:"total_tickets"`
	SoldTickets  int   `json:"sold_tickets"`
	Available    int   `json:"available"`
}
