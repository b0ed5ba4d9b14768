package models

import "time"

type Restaurant struct {
	ID                     int64  `yaml:"id" json:"id"`
	Name                   string `yaml:"name" json:"name"`
	BookingTimeStepMinutes int    `yaml:"booking_time_step_minutes" json:"booking_time_step_minutes"`
	// BookingDuration is subtracted from the last window's close as a minute count.
	BookingDuration            int       `yaml:"booking_duration" json:"booking_duration"`
	WidgetBookingMinutesBefore int       `yaml:"widget_booking_minutes_before" json:"widget_booking_minutes_before"`
	IsActive                   bool      `yaml:"is_active" json:"is_active"`
	CreatedAt                  time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt                  time.Time `yaml:"updated_at" json:"updated_at"`
}

// Step returns the booking step, falling back to the default for unset values.
func (r *Restaurant) Step() int {
	if r.BookingTimeStepMinutes <= 0 {
		return DefaultBookingTimeStepMinutes
	}
	return r.BookingTimeStepMinutes
}
