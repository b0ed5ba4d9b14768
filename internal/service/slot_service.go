package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicehours/internal/domain"
	"servicehours/internal/events"
	"servicehours/internal/metrics"
	"servicehours/internal/models"
	"servicehours/internal/slots"

	"github.com/rs/zerolog"
)

var ErrInvalidRange = errors.New("invalid date range")

// SlotService answers "which start times can be booked on this date".
type SlotService struct {
	restaurants domain.RestaurantRepository
	resolver    slots.WindowResolver
	cache       domain.SlotCache
	generator   *slots.Generator
	clock       slots.Clock
	logger      *zerolog.Logger
}

// NewSlotService wires the slot pipeline. cache may be nil; loc decides which date is today.
func NewSlotService(
	restaurants domain.RestaurantRepository,
	resolver slots.WindowResolver,
	cache domain.SlotCache,
	clock slots.Clock,
	loc *time.Location,
	logger *zerolog.Logger,
) *SlotService {
	if clock == nil {
		clock = slots.SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	local := slots.ClockFunc(func() time.Time { return clock.Now().In(loc) })
	return &SlotService{
		restaurants: restaurants,
		resolver:    resolver,
		cache:       cache,
		generator:   slots.NewGenerator(local),
		clock:       local,
		logger:      logger,
	}
}

// IsToday compares the calendar date of date with the current date in the service timezone.
func (s *SlotService) IsToday(date time.Time) bool {
	return models.SameDate(date, s.clock.Now())
}

// Today returns the current calendar date in the service timezone, as midnight UTC like parsed dates.
func (s *SlotService) Today() time.Time {
	y, m, d := s.clock.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *SlotService) GetServiceTimes(ctx context.Context, restaurantID int64, date time.Time, ignoreBookingDuration bool) ([]string, error) {
	r, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	today := s.IsToday(date)
	key := domain.SlotKey{RestaurantID: restaurantID, Date: date, IgnoreDuration: ignoreBookingDuration}

	// Сегодняшний список зависит от текущего времени, его не кэшируем
	if !today && s.cache != nil {
		cached, ok, err := s.cache.GetSlots(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("slot cache read failed")
		} else if ok {
			metrics.ObserveSlots(metrics.SourceCache, len(cached))
			return cached, nil
		}
	}

	res := s.resolve(ctx, restaurantID, date)
	out, err := s.generator.ForResolution(res, s.params(r, ignoreBookingDuration, today))
	if err != nil {
		return nil, fmt.Errorf("generate slots for restaurant %d: %w", restaurantID, err)
	}

	if !today && !res.Failed() && s.cache != nil {
		if err := s.cache.SetSlots(ctx, key, out); err != nil {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("slot cache write failed")
		}
	}

	metrics.ObserveSlots(metrics.SourceGenerated, len(out))
	return out, nil
}

// GetSlotRange returns slots for days consecutive dates starting at from.
func (s *SlotService) GetSlotRange(ctx context.Context, restaurantID int64, from time.Time, days int, ignoreBookingDuration bool) ([]models.DaySlots, error) {
	if days < 1 || days > models.MaxSlotRangeDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidRange, models.MaxSlotRangeDays, days)
	}

	result := make([]models.DaySlots, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		list, err := s.GetServiceTimes(ctx, restaurantID, date, ignoreBookingDuration)
		if err != nil {
			return nil, err
		}
		result = append(result, models.DaySlots{Date: date, Slots: list})
	}
	return result, nil
}

// WarmSlots regenerates both variants of a day and stores them, ignoring existing entries.
// Unlike GetServiceTimes a failed window lookup is returned so the caller can retry.
func (s *SlotService) WarmSlots(ctx context.Context, restaurantID int64, date time.Time) error {
	if s.cache == nil || s.IsToday(date) {
		return nil
	}

	r, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}

	res := s.resolve(ctx, restaurantID, date)
	if res.Failed() {
		return res.Err
	}

	for _, ignore := range []bool{false, true} {
		out, err := s.generator.Generate(res.Windows, s.params(r, ignore, false))
		if err != nil {
			return fmt.Errorf("generate slots for restaurant %d: %w", restaurantID, err)
		}
		key := domain.SlotKey{RestaurantID: restaurantID, Date: date, IgnoreDuration: ignore}
		if err := s.cache.SetSlots(ctx, key, out); err != nil {
			return err
		}
	}
	return nil
}

// HandleScheduleEvent drops cached lists of the restaurant named in a schedule event.
func (s *SlotService) HandleScheduleEvent(event *events.Event) error {
	if s.cache == nil {
		return nil
	}

	var payload events.ScheduleEventPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	if err := s.cache.InvalidateRestaurant(context.Background(), payload.RestaurantID); err != nil {
		return fmt.Errorf("invalidate restaurant %d: %w", payload.RestaurantID, err)
	}

	s.logger.Debug().Int64("restaurant_id", payload.RestaurantID).Str("day", payload.Day).Msg("slot cache invalidated")
	return nil
}

func (s *SlotService) resolve(ctx context.Context, restaurantID int64, date time.Time) slots.Resolution {
	res := slots.Resolve(ctx, s.resolver, restaurantID, date)
	if res.Failed() {
		metrics.IncResolutionFailure()
		s.logger.Warn().
			Err(res.Err).
			Int64("restaurant_id", restaurantID).
			Str("date", date.Format(models.DateLayout)).
			Msg("service window lookup failed, returning no slots")
	}
	return res
}

func (s *SlotService) params(r *models.Restaurant, ignoreBookingDuration, today bool) slots.Params {
	return slots.Params{
		StepMinutes:            r.Step(),
		BookingDurationMinutes: r.BookingDuration,
		IgnoreBookingDuration:  ignoreBookingDuration,
		LeadMinutes:            r.WidgetBookingMinutesBefore,
		IsToday:                today,
	}
}
