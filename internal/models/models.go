package models

import (
	"fmt"
	"strings"
	"time"
)

// DaySlots is the list of bookable start times for one date.
type DaySlots struct {
	Date  time.Time `json:"date"`
	Slots []string  `json:"slots"`
}

// DayName returns the English weekday name used to key service hours.
func DayName(date time.Time) string {
	return date.Weekday().String()
}

// CanonicalDay normalizes a weekday name ("monday", " Monday ") to its English form.
func CanonicalDay(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d.String(), nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

// SameDate compares calendar dates, ignoring the clock.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
