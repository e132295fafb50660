package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"booking-system/models"
)

// AvailabilityCache keeps per-event seat counts in Redis so the hot
// availability endpoint stays off the database. Entries are written with
// a short TTL and invalidated whenever a booking commits.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(eventID int64) string {
	return fmt.Sprintf("availability:%d", eventID)
}

func (c *AvailabilityCache) Get(ctx context.Context, eventID int64) (*models.Availability, bool) {
	raw, err := c.client.Get(ctx, availabilityKey(eventID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("event_id", eventID).Warn("availability cache read")
		}
		return nil, false
	}
	var av models.Availability
	if err := json.Unmarshal(raw, &av); err != nil {
		return nil, false
	}
	return &av, true
}

func (c *AvailabilityCache) Set(ctx context.Context, av *models.Availability) {
	raw, err := json.Marshal(av)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, availabilityKey(av.EventID), raw, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("event_id", av.EventID).Warn("availability cache write")
	}
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID int64) {
	if err := c.client.Del(ctx, availabilityKey(eventID)).Err(); err != nil {
		log.WithError(err).WithField("event_id", eventID).Warn("availability cache invalidate")
	}
}
