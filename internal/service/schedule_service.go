package service

import (
	"context"
	"fmt"

	"servicehours/internal/database"
	"servicehours/internal/domain"
	"servicehours/internal/events"
	"servicehours/internal/models"
	"servicehours/internal/slots"

	"github.com/rs/zerolog"
)

type ScheduleService struct {
	restaurants domain.RestaurantRepository
	schedule    domain.ScheduleRepository
	eventBus    domain.EventPublisher
	clock       slots.Clock
	logger      *zerolog.Logger
}

func NewScheduleService(
	restaurants domain.RestaurantRepository,
	schedule domain.ScheduleRepository,
	eventBus domain.EventPublisher,
	clock slots.Clock,
	logger *zerolog.Logger,
) *ScheduleService {
	if clock == nil {
		clock = slots.SystemClock
	}
	return &ScheduleService{
		restaurants: restaurants,
		schedule:    schedule,
		eventBus:    eventBus,
		clock:       clock,
		logger:      logger,
	}
}

func (s *ScheduleService) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	return s.restaurants.ListRestaurants(ctx)
}

func (s *ScheduleService) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	return s.restaurants.GetRestaurant(ctx, id)
}

// ReplaceServiceHours заменяет расписание дня и сообщает об изменении
func (s *ScheduleService) ReplaceServiceHours(ctx context.Context, restaurantID int64, day string, windows []slots.ServiceWindow) error {
	canonical, err := models.CanonicalDay(day)
	if err != nil {
		return fmt.Errorf("%w: %v", database.ErrInvalidDay, err)
	}
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}
	}

	if _, err := s.restaurants.GetRestaurant(ctx, restaurantID); err != nil {
		return err
	}

	if err := s.schedule.ReplaceServiceHours(ctx, restaurantID, canonical, windows); err != nil {
		return err
	}

	s.logger.Info().
		Int64("restaurant_id", restaurantID).
		Str("day", canonical).
		Int("windows", len(windows)).
		Msg("service hours replaced")

	s.publishEvent(events.EventServiceHoursChanged, restaurantID, canonical)
	return nil
}

func (s *ScheduleService) publishEvent(eventType string, restaurantID int64, day string) {
	if s.eventBus == nil {
		return
	}
	payload := events.ScheduleEventPayload{
		RestaurantID: restaurantID,
		Day:          day,
		ChangedAt:    s.clock.Now(),
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("Failed to publish event")
	}
}
