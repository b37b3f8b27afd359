package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cadence recurrence pattern of a cohort
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceWeekdays Cadence = "weekdays"
)

var (
	ErrCouldNotSchedule    = errors.New("could not schedule sessions within the lookahead window")
	ErrInvalidSessionCount = errors.New("session count must be positive")
	ErrInvalidCadence      = errors.New("unknown cadence")
)

// Validate reports whether c is a supported cadence.
func (c Cadence) Validate() error {
	switch c {
	case CadenceWeekly, CadenceWeekdays:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCadence, string(c))
	}
}

// Recurrence generates session dates for a cohort.
//
// MaxLookaheadDays bounds how far past the start date the last session may
// fall, for both cadences.
type Recurrence struct {
	Weekdays         []time.Weekday
	MaxLookaheadDays int
}

// Dates returns exactly count dates starting at start, or an error.
func (r Recurrence) Dates(start time.Time, cadence Cadence, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, ErrInvalidSessionCount
	}
	start = CivilDate(start)
	switch cadence {
	case CadenceWeekly:
		return r.weekly(start, count)
	case CadenceWeekdays:
		return r.weekdays(start, count)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCadence, string(cadence))
	}
}

func (r Recurrence) weekly(start time.Time, count int) ([]time.Time, error) {
	if 7*(count-1) > r.MaxLookaheadDays {
		return nil, fmt.Errorf("%w: %d weekly sessions need %d days, limit %d",
			ErrCouldNotSchedule, count, 7*(count-1), r.MaxLookaheadDays)
	}
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, start.AddDate(0, 0, 7*i))
	}
	return dates, nil
}

func (r Recurrence) weekdays(start time.Time, count int) ([]time.Time, error) {
	allowed := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, d := range r.Weekdays {
		allowed[d] = true
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("%w: no weekdays configured", ErrCouldNotSchedule)
	}

	dates := make([]time.Time, 0, count)
	for offset := 0; offset <= r.MaxLookaheadDays; offset++ {
		day := start.AddDate(0, 0, offset)
		if !allowed[day.Weekday()] {
			continue
		}
		dates = append(dates, day)
		if len(dates) == count {
			return dates, nil
		}
	}
	return nil, fmt.Errorf("%w: found %d of %d sessions within %d days",
		ErrCouldNotSchedule, len(dates), count, r.MaxLookaheadDays)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays converts names like "monday" or "Mon" to weekdays.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if d, ok := weekdayNames[key]; ok {
			out = append(out, d)
			continue
		}
		found := false
		if len(key) >= 3 {
			for name, d := range weekdayNames {
				if strings.HasPrefix(name, key) {
					out = append(out, d)
					found = true
					break
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
	}
	return out, nil
}
