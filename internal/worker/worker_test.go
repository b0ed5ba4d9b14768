package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"servicehours/internal/events"
	"servicehours/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var warmToday = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

type fakeRestaurants struct {
	list []*models.Restaurant
	err  error
}

func (f *fakeRestaurants) GetRestaurant(_ context.Context, id int64) (*models.Restaurant, error) {
	for _, r := range f.list {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRestaurants) ListRestaurants(_ context.Context) ([]*models.Restaurant, error) {
	return f.list, f.err
}

type warmCall struct {
	restaurantID int64
	date         time.Time
}

type fakeWarmer struct {
	mu       sync.Mutex
	calls    []warmCall
	failures map[string]int // date -> remaining failures
}

func (f *fakeWarmer) Today() time.Time { return warmToday }

func (f *fakeWarmer) WarmSlots(_ context.Context, restaurantID int64, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, warmCall{restaurantID, date})
	key := date.Format(models.DateLayout)
	if f.failures[key] > 0 {
		f.failures[key]--
		return errors.New("redis unavailable")
	}
	return nil
}

func (f *fakeWarmer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestWarmer(restaurants *fakeRestaurants, slots *fakeWarmer, days int) (*CacheWarmer, *[]time.Duration) {
	logger := zerolog.New(io.Discard)
	w := NewCacheWarmer(restaurants, slots, days, time.Hour, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, &logger)
	var slept []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return w, &slept
}

func TestCacheWarmer_WarmRestaurant(t *testing.T) {
	slots := &fakeWarmer{}
	w, _ := newTestWarmer(&fakeRestaurants{}, slots, 3)

	failed := w.WarmRestaurant(context.Background(), 7)
	assert.Zero(t, failed)

	require.Len(t, slots.calls, 3)
	for i, c := range slots.calls {
		assert.Equal(t, int64(7), c.restaurantID)
		assert.Equal(t, warmToday.AddDate(0, 0, i+1), c.date, "today is never warmed")
	}
}

func TestCacheWarmer_Retry(t *testing.T) {
	ctx := context.Background()

	t.Run("RecoversWithBackoff", func(t *testing.T) {
		slots := &fakeWarmer{failures: map[string]int{"2026-10-21": 2}}
		w, slept := newTestWarmer(&fakeRestaurants{}, slots, 1)

		assert.Zero(t, w.WarmRestaurant(ctx, 1))
		assert.Equal(t, 3, slots.callCount())
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		slots := &fakeWarmer{failures: map[string]int{"2026-10-21": 10}}
		w, slept := newTestWarmer(&fakeRestaurants{}, slots, 2)

		assert.Equal(t, 1, w.WarmRestaurant(ctx, 1))
		// Three attempts for the failing day, one for the next.
		assert.Equal(t, 4, slots.callCount())
		assert.Len(t, *slept, 2)
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		slots := &fakeWarmer{failures: map[string]int{"2026-10-21": 10}}
		w, _ := newTestWarmer(&fakeRestaurants{}, slots, 1)
		w.sleep = sleepContext

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.Equal(t, 1, w.WarmRestaurant(cctx, 1))
		assert.Equal(t, 1, slots.callCount())
	})
}

func TestCacheWarmer_WarmAll(t *testing.T) {
	ctx := context.Background()

	t.Run("EveryRestaurant", func(t *testing.T) {
		slots := &fakeWarmer{}
		restaurants := &fakeRestaurants{list: []*models.Restaurant{{ID: 1}, {ID: 2}}}
		w, _ := newTestWarmer(restaurants, slots, 2)

		assert.Zero(t, w.WarmAll(ctx))
		assert.Equal(t, 4, slots.callCount())
	})

	t.Run("ListError", func(t *testing.T) {
		slots := &fakeWarmer{}
		w, _ := newTestWarmer(&fakeRestaurants{err: errors.New("db closed")}, slots, 2)

		assert.Zero(t, w.WarmAll(ctx))
		assert.Zero(t, slots.callCount())
	})
}

func TestCacheWarmer_StartAndTrigger(t *testing.T) {
	slots := &fakeWarmer{}
	restaurants := &fakeRestaurants{list: []*models.Restaurant{{ID: 1}}}
	w, _ := newTestWarmer(restaurants, slots, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Initial pass.
	require.Eventually(t, func() bool { return slots.callCount() == 1 }, time.Second, 10*time.Millisecond)

	bus := events.NewEventBus()
	bus.Subscribe(events.EventServiceHoursChanged, w.HandleScheduleEvent)
	require.NoError(t, bus.PublishJSON(events.EventServiceHoursChanged, events.ScheduleEventPayload{RestaurantID: 5}))

	require.Eventually(t, func() bool { return slots.callCount() == 2 }, time.Second, 10*time.Millisecond)
	slots.mu.Lock()
	assert.Equal(t, int64(5), slots.calls[1].restaurantID)
	slots.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("warmer did not stop")
	}
}

func TestCacheWarmer_TriggerQueueFull(t *testing.T) {
	w, _ := newTestWarmer(&fakeRestaurants{}, &fakeWarmer{}, 1)
	for i := 0; i < cap(w.queue)+5; i++ {
		w.Trigger(int64(i))
	}
	assert.Len(t, w.queue, cap(w.queue))

	assert.Error(t, w.HandleScheduleEvent(&events.Event{Payload: []byte("nope")}))
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 5*time.Second, policy.NextDelay(5), "capped")
	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
	assert.Equal(t, 30*time.Second, RetryPolicy{}.NextDelay(50), "default cap")
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5}.withDefaults()
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, 2.0, p.BackoffFactor)
}
