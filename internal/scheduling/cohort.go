package scheduling

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout calendar date wire format
const DateLayout = "2006-01-02"

// Cohort a named enrollment group with a fixed schedule
type Cohort struct {
	Label    string
	Start    time.Time
	Cadence  Cadence
	Sessions int
}

// CohortTable maps cohort labels to their schedule. Lookups are exact-string.
type CohortTable struct {
	byLabel map[string]Cohort
	order   []string
}

// NewCohortTable builds a table from cohorts; later duplicates are rejected.
func NewCohortTable(cohorts []Cohort) (*CohortTable, error) {
	t := &CohortTable{byLabel: make(map[string]Cohort, len(cohorts))}
	for _, c := range cohorts {
		if _, dup := t.byLabel[c.Label]; dup {
			return nil, fmt.Errorf("duplicate cohort label %q", c.Label)
		}
		if err := c.Cadence.Validate(); err != nil {
			return nil, fmt.Errorf("cohort %q: %w", c.Label, err)
		}
		c.Start = CivilDate(c.Start)
		t.byLabel[c.Label] = c
		t.order = append(t.order, c.Label)
	}
	return t, nil
}

// Resolve returns the first session date for label.
// ok is false for any label not in the table; callers skip, never guess.
func (t *CohortTable) Resolve(label string) (start time.Time, ok bool) {
	c, ok := t.byLabel[label]
	if !ok {
		return time.Time{}, false
	}
	return c.Start, true
}

// Lookup returns the full cohort descriptor for label.
func (t *CohortTable) Lookup(label string) (Cohort, bool) {
	c, ok := t.byLabel[label]
	return c, ok
}

// Cohorts lists cohorts ordered by start date, then label.
func (t *CohortTable) Cohorts() []Cohort {
	out := make([]Cohort, 0, len(t.order))
	for _, l := range t.order {
		out = append(out, t.byLabel[l])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// CivilDate truncates t to midnight UTC of its calendar date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
