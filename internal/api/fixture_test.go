package api

import (
	"context"
	"io"
	"testing"
	"time"

	"servicehours/internal/config"
	"servicehours/internal/database"
	"servicehours/internal/events"
	"servicehours/internal/models"
	"servicehours/internal/repository"
	"servicehours/internal/service"
	"servicehours/internal/slots"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	// Tuesday 10:00 UTC.
	apiNow    = time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	wednesday = time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
)

type apiFixture struct {
	db         *database.DB
	slots      *service.SlotService
	schedule   *service.ScheduleService
	restaurant *models.Restaurant
}

// newAPIFixture wires the real services over an in-memory database. The
// restaurant serves Wednesday 12:00-15:00 with a 30 minute step and a one hour booking.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := &models.Restaurant{
		Name:                   "Trattoria",
		BookingTimeStepMinutes: 30,
		BookingDuration:        60,
		IsActive:               true,
	}
	require.NoError(t, db.SaveRestaurant(ctx, r))
	require.NoError(t, db.ReplaceServiceHours(ctx, r.ID, "Wednesday", []slots.ServiceWindow{
		{Open: "12:00:00", Close: "15:00:00"},
	}))

	clock := slots.FixedClock(apiNow)
	bus := events.NewEventBus()
	slotSvc := service.NewSlotService(db, db, repository.NewMemorySlotCache(time.Hour), clock, time.UTC, &logger)
	bus.Subscribe(events.EventServiceHoursChanged, slotSvc.HandleScheduleEvent)

	return &apiFixture{
		db:         db,
		slots:      slotSvc,
		schedule:   service.NewScheduleService(db, db, bus, clock, &logger),
		restaurant: r,
	}
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "reader", Extra: "reader-extra", Permissions: []string{permReadSlots, permReadRestaurants}},
				{Key: "admin", Extra: "admin-extra"},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: 1000, Burst: 1000},
	}
}
