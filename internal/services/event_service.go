package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"

	"booking-system/models"
	"booking-system/monitoring"
)

type EventService struct {
	db     dbx.Builder
	events EventStore
	cache  *AvailabilityCache
}

func NewEventService(db dbx.Builder, events EventStore, cache *AvailabilityCache) *EventService {
	return &EventService{db: db, events: events, cache: cache}
}

func (s *EventService) List(ctx context.Context, onlyActive bool) ([]*models.Event, error) {
	return s.events.List(ctx, s.db, onlyActive)
}

func (s *EventService) Create(ctx context.Context, event *models.Event) error {
	if event.TotalTickets < 1 {
		return fmt.Errorf("total tickets must be positive")
	}
	if event.TicketPrice.IsNegative() {
		return fmt.Errorf("ticket price cannot be negative")
	}
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("event must end after it starts")
	}
	return s.events.Create(ctx, s.db, event)
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	return s.events.Get(ctx, s.db, id)
}

// Availability answers the seat-count question, cache first.
func (s *EventService) Availability(ctx context.Context, eventID int64) (*models.Availability, error) {
	if s.cache != nil {
		if av, ok := s.cache.Get(ctx, eventID); ok {
			monitoring.TrackCacheHit(true)
			return av, nil
		}
		monitoring.TrackCacheHit(false)
	}

	event, err := s.events.Get(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	av := &models.Availability{
		EventID:      event.ID,
		TotalTickets: event.TotalTickets,
		SoldTickets:  event.SoldTickets,
		Available:    event.Available(),
	}
	if s.cache != nil {
		s.cache.Set(ctx, av)
	}
	return av, nil
}
