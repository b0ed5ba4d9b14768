package models

import (
	"time"

	"servicehours/internal/slots"
)

// ServiceHour is a stored open/close row. Regular rows have SpecialPeriodID 0.
type ServiceHour struct {
	ID                    int64     `json:"id"`
	RestaurantID          int64     `json:"restaurant_id"`
	SpecialPeriodID       int64     `json:"special_period_id,omitempty"`
	Day                   string    `json:"day"`
	Open                  string    `json:"open"`
	Close                 string    `json:"close"`
	EnforceOneSitting     bool      `json:"enforce_one_sitting"`
	IgnoreBookingDuration bool      `json:"ignore_booking_duration"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Window strips bookkeeping fields.
func (h ServiceHour) Window() slots.ServiceWindow {
	return slots.ServiceWindow{
		Open:                  h.Open,
		Close:                 h.Close,
		EnforceOneSitting:     h.EnforceOneSitting,
		IgnoreBookingDuration: h.IgnoreBookingDuration,
	}
}

// SpecialServicePeriod overrides the weekly schedule between two dates, inclusive.
type SpecialServicePeriod struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Covers reports whether date falls inside the period.
func (p *SpecialServicePeriod) Covers(date time.Time) bool {
	d := date.Format(DateLayout)
	return d >= p.StartDate.Format(DateLayout) && d <= p.EndDate.Format(DateLayout)
}
