package slots

import (
	"fmt"
	"sort"
	"time"
)

const midnightSlot = "00:00"

// Params are the restaurant-level settings for one generation call.
type Params struct {
	StepMinutes int
	// BookingDurationMinutes is subtracted from the last window's close.
	BookingDurationMinutes int
	IgnoreBookingDuration  bool
	LeadMinutes            int
	IsToday                bool
}

// Generator turns a day's service windows into bookable start times.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	clock Clock
}

func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = SystemClock
	}
	return &Generator{clock: clock}
}

// ForResolution generates slots for a resolved day. A failed resolution
// yields an empty list and no error.
func (g *Generator) ForResolution(res Resolution, p Params) ([]string, error) {
	if res.Failed() {
		return []string{}, nil
	}
	return g.Generate(res.Windows, p)
}

// Generate returns the sorted, unique HH:MM start times offered by windows.
// Malformed open/close values fail the whole call with ErrInvalidTime.
func (g *Generator) Generate(windows []ServiceWindow, p Params) ([]string, error) {
	if p.StepMinutes <= 0 {
		return nil, ErrInvalidStep
	}

	parsed := make([]window, 0, len(windows))
	for i, w := range windows {
		pw, err := parseWindow(w)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		parsed = append(parsed, pw)
	}

	acc := accumulator{ignoreDuration: p.IgnoreBookingDuration, slots: []string{}}
	for i, w := range parsed {
		acc = acc.expand(w, i == len(parsed)-1, p)
	}

	out := acc.slots
	if p.IsToday {
		out = dropUntilCutoff(out, g.clock.Now(), p.LeadMinutes)
	}
	out = unique(out)
	if n := len(out); n > 0 && out[n-1] == midnightSlot {
		out = out[:n-1]
	}
	sort.Strings(out)

	return out, nil
}

type window struct {
	open, close           time.Time
	enforceOneSitting     bool
	ignoreBookingDuration bool
}

func parseWindow(w ServiceWindow) (window, error) {
	open, err := ParseTimeOfDay(w.Open)
	if err != nil {
		return window{}, fmt.Errorf("open: %w", err)
	}
	closeAt, err := ParseTimeOfDay(w.Close)
	if err != nil {
		return window{}, fmt.Errorf("close: %w", err)
	}
	return window{
		open:                  open,
		close:                 closeAt,
		enforceOneSitting:     w.EnforceOneSitting,
		ignoreBookingDuration: w.IgnoreBookingDuration,
	}, nil
}

// accumulator is folded over the windows of one call. Once a window asks to
// ignore the booking duration, every later window observes it as well.
type accumulator struct {
	ignoreDuration bool
	slots          []string
}

func (a accumulator) expand(w window, last bool, p Params) accumulator {
	if w.enforceOneSitting {
		a.slots = append(a.slots, w.open.Format(SlotLayout))
		return a
	}

	if w.ignoreBookingDuration {
		a.ignoreDuration = true
	}

	open, closeAt := w.open, w.close
	if last && !a.ignoreDuration {
		closeAt = closeAt.Add(-time.Duration(p.BookingDurationMinutes) * time.Minute)
	}

	diff := wholeMinutes(closeAt.Sub(open))
	a.slots = append(a.slots, open.Format(SlotLayout))

	step := time.Duration(p.StepMinutes) * time.Minute
	// A close on :59 keeps expanding while minutes remain, even past close.
	for diff > 0 && (closeAt.Minute() == 59 || !open.Add(step).After(closeAt)) {
		open = open.Add(step)
		a.slots = append(a.slots, open.Format(SlotLayout))
		diff -= p.StepMinutes
	}

	return a
}

// wholeMinutes is the absolute difference truncated to whole minutes.
func wholeMinutes(d time.Duration) int {
	if d < 0 {
		d = -d
	}
	return int(d / time.Minute)
}

// dropUntilCutoff removes every slot at or before now+lead, compared as
// offsets from midnight of now's day. A cutoff past midnight removes all slots.
func dropUntilCutoff(slots []string, now time.Time, leadMinutes int) []string {
	cutoff := sinceMidnight(now) + time.Duration(leadMinutes)*time.Minute

	kept := make([]string, 0, len(slots))
	for _, s := range slots {
		t, err := time.Parse(SlotLayout, s)
		if err != nil {
			continue
		}
		if cutoff >= sinceMidnight(t) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// unique keeps the first occurrence of every slot.
func unique(slots []string) []string {
	seen := make(map[string]struct{}, len(slots))
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
