package scheduling

import (
	"math"
	"time"
)

// AttendanceEntry the fields of an attendance record hours accrual reads.
type AttendanceEntry struct {
	SignIn  time.Time
	SignOut *time.Time
	Hours   *float64
}

// Open reports whether the entry has no sign-out yet.
func (e AttendanceEntry) Open() bool { return e.SignOut == nil }

// SessionHours returns signOut - signIn in hours, rounded to two decimals.
// A sign-out before the sign-in yields zero.
func SessionHours(signIn, signOut time.Time) float64 {
	d := signOut.Sub(signIn)
	if d <= 0 {
		return 0
	}
	return round2(d.Hours())
}

// TotalHours sums the hours of closed entries; open entries and entries
// without hours contribute zero.
func TotalHours(entries []AttendanceEntry) float64 {
	var total float64
	for _, e := range entries {
		if e.Open() || e.Hours == nil {
			continue
		}
		total += *e.Hours
	}
	return round2(total)
}

// Completed reports whether total meets the required hours.
func Completed(total, required float64) bool {
	return total >= required
}

// Remaining hours still needed, never negative.
func Remaining(total, required float64) float64 {
	if total >= required {
		return 0
	}
	return round2(required - total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
