package service

import (
	"context"
	"time"

	"servicehours/internal/models"
	"servicehours/internal/slots"

	"github.com/stretchr/testify/mock"
)

type mockRestaurants struct {
	mock.Mock
}

func (m *mockRestaurants) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *mockRestaurants) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Restaurant), args.Error(1)
}

type mockSchedule struct {
	mock.Mock
}

func (m *mockSchedule) ResolveWindows(ctx context.Context, restaurantID int64, date time.Time) ([]slots.ServiceWindow, error) {
	args := m.Called(ctx, restaurantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]slots.ServiceWindow), args.Error(1)
}

func (m *mockSchedule) ReplaceServiceHours(ctx context.Context, restaurantID int64, day string, windows []slots.ServiceWindow) error {
	return m.Called(ctx, restaurantID, day, windows).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
