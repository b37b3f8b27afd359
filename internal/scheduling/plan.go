package scheduling

import "time"

// Outcome per-item result of a backfill
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Skip and failure reasons reported to callers.
const (
	ReasonAlreadyScheduled = "already scheduled"
	ReasonUnknownCohort    = "unknown cohort label"
	ReasonDropped          = "student dropped"
)

// Decision what a backfill intends to do for one (student, date) pair.
type Decision struct {
	StudentID int64
	Date      time.Time
	Index     int // 1-based session number within the cohort
	Outcome   Outcome
	Reason    string
}

// BookedSet calendar dates already holding a session for one student.
type BookedSet map[string]struct{}

// NewBookedSet indexes dates by calendar day.
func NewBookedSet(dates []time.Time) BookedSet {
	s := make(BookedSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add marks the calendar day of d as booked.
func (s BookedSet) Add(d time.Time) { s[CivilDate(d).Format(DateLayout)] = struct{}{} }

// Has reports whether the calendar day of d is booked.
func (s BookedSet) Has(d time.Time) bool {
	_, ok := s[CivilDate(d).Format(DateLayout)]
	return ok
}

// Plan decides create/skip for each generated date of a student against
// the dates already booked. Repeated dates within dates are planned once.
func Plan(studentID int64, dates []time.Time, booked BookedSet) []Decision {
	seen := make(BookedSet, len(booked)+len(dates))
	for k := range booked {
		seen[k] = struct{}{}
	}
	out := make([]Decision, 0, len(dates))
	for i, d := range dates {
		dec := Decision{StudentID: studentID, Date: CivilDate(d), Index: i + 1}
		if seen.Has(d) {
			dec.Outcome = OutcomeSkipped
			dec.Reason = ReasonAlreadyScheduled
		} else {
			dec.Outcome = OutcomeCreated
			seen.Add(d)
		}
		out = append(out, dec)
	}
	return out
}

// Tally counts decisions by outcome.
type Tally struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Count adds one outcome to the tally.
func (t *Tally) Count(o Outcome) {
	switch o {
	case OutcomeCreated:
		t.Created++
	case OutcomeSkipped:
		t.Skipped++
	case OutcomeFailed:
		t.Failed++
	}
}
