package worker

import (
	"context"
	"time"

	"servicehours/internal/domain"
	"servicehours/internal/events"
	"servicehours/internal/models"

	"github.com/rs/zerolog"
)

// SlotWarmer regenerates and stores the slot lists of one day.
type SlotWarmer interface {
	WarmSlots(ctx context.Context, restaurantID int64, date time.Time) error
	Today() time.Time
}

// CacheWarmer precomputes slot lists for the days after today so reads hit the cache.
type CacheWarmer struct {
	restaurants domain.RestaurantRepository
	slots       SlotWarmer
	days        int
	interval    time.Duration
	retryPolicy RetryPolicy
	queue       chan int64
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zerolog.Logger
}

// NewCacheWarmer builds a warmer with sane defaults.
func NewCacheWarmer(
	restaurants domain.RestaurantRepository,
	slots SlotWarmer,
	days int,
	interval time.Duration,
	retry RetryPolicy,
	logger *zerolog.Logger,
) *CacheWarmer {
	if days <= 0 {
		days = models.DefaultWarmDays
	}
	if interval <= 0 {
		interval = time.Hour
	}

	return &CacheWarmer{
		restaurants: restaurants,
		slots:       slots,
		days:        days,
		interval:    interval,
		retryPolicy: retry.withDefaults(),
		queue:       make(chan int64, 64),
		sleep:       sleepContext,
		logger:      logger,
	}
}

// Start warms everything once, then on every tick and for every queued restaurant; stops when ctx is done.
func (w *CacheWarmer) Start(ctx context.Context) {
	w.logger.Info().Int("days", w.days).Dur("interval", w.interval).Msg("cache warmer started")
	defer w.logger.Info().Msg("cache warmer stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.WarmAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.WarmAll(ctx)
		case id := <-w.queue:
			w.WarmRestaurant(ctx, id)
		}
	}
}

// Trigger queues a restaurant for rewarming. A full queue drops the request; the next tick covers it.
func (w *CacheWarmer) Trigger(restaurantID int64) {
	select {
	case w.queue <- restaurantID:
	default:
		w.logger.Warn().Int64("restaurant_id", restaurantID).Msg("warm queue full, waiting for next pass")
	}
}

// HandleScheduleEvent queues the restaurant named in a schedule event.
func (w *CacheWarmer) HandleScheduleEvent(event *events.Event) error {
	var payload events.ScheduleEventPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	w.Trigger(payload.RestaurantID)
	return nil
}

// WarmAll warms every active restaurant. Returns the number of days that could not be warmed.
func (w *CacheWarmer) WarmAll(ctx context.Context) int {
	restaurants, err := w.restaurants.ListRestaurants(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("cache warmer: list restaurants")
		return 0
	}

	failed := 0
	for _, r := range restaurants {
		if ctx.Err() != nil {
			break
		}
		failed += w.WarmRestaurant(ctx, r.ID)
	}
	return failed
}

// WarmRestaurant warms days 1..days after today. Returns the number of failed days.
func (w *CacheWarmer) WarmRestaurant(ctx context.Context, restaurantID int64) int {
	today := w.slots.Today()
	failed := 0
	for i := 1; i <= w.days; i++ {
		date := today.AddDate(0, 0, i)
		if err := w.warmWithRetry(ctx, restaurantID, date); err != nil {
			failed++
			w.logger.Error().
				Err(err).
				Int64("restaurant_id", restaurantID).
				Str("date", date.Format(models.DateLayout)).
				Msg("cache warmer: giving up on day")
		}
	}
	return failed
}

func (w *CacheWarmer) warmWithRetry(ctx context.Context, restaurantID int64, date time.Time) error {
	var err error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		if err = w.slots.WarmSlots(ctx, restaurantID, date); err == nil {
			return nil
		}
		if attempt == w.retryPolicy.MaxRetries {
			break
		}
		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("cache warmer: retrying")
		if sleepErr := w.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
