package domain

import (
	"context"
	"fmt"
	"time"

	"servicehours/internal/models"
	"servicehours/internal/slots"
)

type RestaurantRepository interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]*models.Restaurant, error)
}

type ScheduleRepository interface {
	slots.WindowResolver
	ReplaceServiceHours(ctx context.Context, restaurantID int64, day string, windows []slots.ServiceWindow) error
}

// SlotKey identifies one cached slot list.
type SlotKey struct {
	RestaurantID   int64
	Date           time.Time
	IgnoreDuration bool
}

func (k SlotKey) String() string {
	return fmt.Sprintf("slots:%d:%s:%t", k.RestaurantID, k.Date.Format(models.DateLayout), k.IgnoreDuration)
}

type SlotCache interface {
	GetSlots(ctx context.Context, key SlotKey) ([]string, bool, error)
	SetSlots(ctx context.Context, key SlotKey, slots []string) error
	InvalidateRestaurant(ctx context.Context, restaurantID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SlotProvider interface {
	Today() time.Time
	GetServiceTimes(ctx context.Context, restaurantID int64, date time.Time, ignoreBookingDuration bool) ([]string, error)
	GetSlotRange(ctx context.Context, restaurantID int64, from time.Time, days int, ignoreBookingDuration bool) ([]models.DaySlots, error)
	WarmSlots(ctx context.Context, restaurantID int64, date time.Time) error
}

type ScheduleManager interface {
	ListRestaurants(ctx context.Context) ([]*models.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	ReplaceServiceHours(ctx context.Context, restaurantID int64, day string, windows []slots.ServiceWindow) error
}
