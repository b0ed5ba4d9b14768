package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"servicehours/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetSlots(ctx context.Context, key domain.SlotKey) ([]string, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *mockCache) SetSlots(ctx context.Context, key domain.SlotKey, slots []string) error {
	args := m.Called(ctx, key, slots)
	return args.Error(0)
}

func (m *mockCache) InvalidateRestaurant(ctx context.Context, restaurantID int64) error {
	args := m.Called(ctx, restaurantID)
	return args.Error(0)
}

func TestFailoverSlotCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	cache := NewFailoverSlotCache(primary, fallback, &logger)
	ctx := context.Background()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	key := func(id int64) domain.SlotKey { return domain.SlotKey{RestaurantID: id, Date: testDate} }

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("GetSlots", ctx, key(1)).Return([]string{"12:00"}, true, nil).Once()

		got, ok, err := cache.GetSlots(ctx, key(1))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"12:00"}, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("GetSlots", ctx, key(2)).Return(nil, false, errors.New("fail")).Once()
		fallback.On("GetSlots", ctx, key(2)).Return([]string{"13:00"}, true, nil).Once()

		got, ok, err := cache.GetSlots(ctx, key(2))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"13:00"}, got)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		fallback.On("SetSlots", ctx, key(3), []string{"14:00"}).Return(nil).Once()

		assert.NoError(t, cache.SetSlots(ctx, key(3), []string{"14:00"}))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "SetSlots", ctx, key(3), []string{"14:00"})
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("GetSlots", ctx, key(4)).Return(nil, false, errors.New("still fail")).Once()
		fallback.On("GetSlots", ctx, key(4)).Return(nil, false, nil).Once()

		_, ok, err := cache.GetSlots(ctx, key(4))
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("GetSlots", ctx, key(5)).Return([]string{"15:00"}, true, nil).Once()

		got, ok, err := cache.GetSlots(ctx, key(5))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"15:00"}, got)
		assert.False(t, cache.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("SetSlotsFailover", func(t *testing.T) {
		primary.On("SetSlots", ctx, key(6), []string{"16:00"}).Return(errors.New("fail")).Once()
		fallback.On("SetSlots", ctx, key(6), []string{"16:00"}).Return(nil).Once()

		assert.NoError(t, cache.SetSlots(ctx, key(6), []string{"16:00"}))
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateWhileDownClearsFallback", func(t *testing.T) {
		fallback.On("InvalidateRestaurant", ctx, int64(7)).Return(nil).Once()

		assert.NoError(t, cache.InvalidateRestaurant(ctx, 7))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "InvalidateRestaurant", ctx, int64(7))
	})

	t.Run("InvalidateClearsBoth", func(t *testing.T) {
		cache.isDown.Store(false)
		fallback.On("InvalidateRestaurant", ctx, int64(8)).Return(nil).Once()
		primary.On("InvalidateRestaurant", ctx, int64(8)).Return(nil).Once()

		assert.NoError(t, cache.InvalidateRestaurant(ctx, 8))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidatePrimaryFailure", func(t *testing.T) {
		cache.isDown.Store(false)
		fallback.On("InvalidateRestaurant", ctx, int64(9)).Return(nil).Once()
		primary.On("InvalidateRestaurant", ctx, int64(9)).Return(errors.New("fail")).Once()

		assert.NoError(t, cache.InvalidateRestaurant(ctx, 9))
		assert.True(t, cache.isDown.Load())
	})
}
