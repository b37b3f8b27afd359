package service

import (
	"fmt"
	"time"

	"github.com/CaMy395/ReadyPortal-sub001/config"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
)

// CourseCalendar course constants resolved from configuration
type CourseCalendar struct {
	Cohorts         *scheduling.CohortTable
	Recurrence      scheduling.Recurrence
	DefaultSessions int
	RequiredHours   float64
	SessionStart    string
	SessionEnd      string
	SessionTitle    string
	Location        *time.Location
	BackfillLockTTL time.Duration
}

// NewCourseCalendar validates the course section and builds the cohort table
func NewCourseCalendar(cfg *config.CourseConfig) (*CourseCalendar, error) {
	weekdays, err := scheduling.ParseWeekdays(cfg.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("course.weekdays: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("course.timezone: %w", err)
	}

	cohorts := make([]scheduling.Cohort, 0, len(cfg.Cohorts))
	for _, c := range cfg.Cohorts {
		start, err := scheduling.ParseDate(c.StartDate)
		if err != nil {
			return nil, fmt.Errorf("cohort %q start_date: %w", c.Label, err)
		}
		cadence := scheduling.Cadence(c.Cadence)
		if cadence == "" {
			cadence = scheduling.CadenceWeekly
		}
		sessions := c.Sessions
		if sessions <= 0 {
			sessions = cfg.SessionCount
		}
		cohorts = append(cohorts, scheduling.Cohort{
			Label:    c.Label,
			Start:    start,
			Cadence:  cadence,
			Sessions: sessions,
		})
	}
	table, err := scheduling.NewCohortTable(cohorts)
	if err != nil {
		return nil, err
	}

	lockTTL := cfg.BackfillLockTTL
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}

	return &CourseCalendar{
		Cohorts: table,
		Recurrence: scheduling.Recurrence{
			Weekdays:         weekdays,
			MaxLookaheadDays: cfg.MaxLookaheadDays,
		},
		DefaultSessions: cfg.SessionCount,
		RequiredHours:   cfg.RequiredHours,
		SessionStart:    cfg.SessionStart,
		SessionEnd:      cfg.SessionEnd,
		SessionTitle:    cfg.SessionTitle,
		Location:        loc,
		BackfillLockTTL: lockTTL,
	}, nil
}

// SessionDates generates the session dates of a cohort label.
// ok is false for labels the table does not know.
func (c *CourseCalendar) SessionDates(label string) (dates []time.Time, cohort scheduling.Cohort, ok bool, err error) {
	cohort, ok = c.Cohorts.Lookup(label)
	if !ok {
		return nil, cohort, false, nil
	}
	dates, err = c.Recurrence.Dates(cohort.Start, cohort.Cadence, cohort.Sessions)
	return dates, cohort, true, err
}
