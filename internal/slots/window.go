package slots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// TimeLayout is the storage format of service-hour open/close values.
	TimeLayout = "15:04:05"
	// ShortTimeLayout is accepted for open/close values without seconds.
	ShortTimeLayout = "15:04"
	// SlotLayout formats a bookable start time.
	SlotLayout = "15:04"
)

var (
	ErrInvalidTime = errors.New("invalid time of day")
	ErrInvalidStep = errors.New("booking step must be positive")
)

// ServiceWindow is one open/close interval of a resolved day.
type ServiceWindow struct {
	Open                  string `json:"open" yaml:"open"`
	Close                 string `json:"close" yaml:"close"`
	EnforceOneSitting     bool   `json:"enforce_one_sitting" yaml:"enforce_one_sitting"`
	IgnoreBookingDuration bool   `json:"ignore_booking_duration" yaml:"ignore_booking_duration"`
}

// Validate checks that both bounds parse as a time of day.
func (w ServiceWindow) Validate() error {
	if _, err := ParseTimeOfDay(w.Open); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if _, err := ParseTimeOfDay(w.Close); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// ParseTimeOfDay parses "HH:MM:SS" or "HH:MM". The result is anchored to the
// zero date, so arithmetic that crosses midnight moves to a neighbouring day.
func ParseTimeOfDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(TimeLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(ShortTimeLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
}

// WindowResolver returns the ordered service windows that apply to a
// restaurant on a calendar date, regular or special.
type WindowResolver interface {
	ResolveWindows(ctx context.Context, restaurantID int64, date time.Time) ([]ServiceWindow, error)
}

// Resolution is the outcome of asking a WindowResolver for a day.
type Resolution struct {
	Windows []ServiceWindow
	Err     error
}

// Failed reports whether window resolution failed.
func (r Resolution) Failed() bool {
	return r.Err != nil
}

// Resolve calls the resolver and captures its outcome without propagating the error.
func Resolve(ctx context.Context, resolver WindowResolver, restaurantID int64, date time.Time) Resolution {
	windows, err := resolver.ResolveWindows(ctx, restaurantID, date)
	if err != nil {
		return Resolution{Err: err}
	}
	return Resolution{Windows: windows}
}
