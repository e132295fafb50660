package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"booking-system/models"
)

func TestAvailability_CacheMissFillsCache(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	events := &mockEventStore{}
	svc := NewEventService(nil, events, NewAvailabilityCache(client, 5*time.Second))

	ctx := context.Background()
	events.On("Get", ctx, nil, int64(3)).Return(testEvent(100_000, 100, 40), nil)

	expected, _ := json.Marshal(&models.Availability{
		EventID: 3, TotalTickets: 100, SoldTickets: 40, Available: 60,
	})
	redisMock.ExpectGet("availability:3").RedisNil()
	redisMock.ExpectSet("availability:3", expected, 5*time.Second).SetVal("OK")

	av, err := svc.Availability(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 60, av.Available)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAvailability_CacheHitSkipsStore(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	events := &mockEventStore{}
	svc := NewEventService(nil, events, NewAvailabilityCache(client, 5*time.Second))

	cached, _ := json.Marshal(&models.Availability{
		EventID: 3, TotalTickets: 100, SoldTickets: 99, Available: 1,
	})
	redisMock.ExpectGet("availability:3").SetVal(string(cached))

	av, err := svc.Availability(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, av.Available)

	events.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}
