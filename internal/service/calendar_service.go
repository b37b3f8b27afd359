package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
)

const (
	calendarProductID = "-//Ready Portal//Class Sessions//EN"
	calendarName      = "Ready Portal Sessions"
	clockLayout       = "15:04:05"
)

// CalendarService iCalendar feed of class sessions and appointments
type CalendarService interface {
	// Feed serializes every session between from and to (inclusive, either may be nil).
	Feed(ctx context.Context, from, to *time.Time) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	course *CourseCalendar
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService creates a CalendarService
func NewCalendarService(repo *repository.Repository, course *CourseCalendar, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, course: course, logger: logger, now: time.Now}
}

func (s *calendarService) Feed(ctx context.Context, from, to *time.Time) (string, error) {
	if from != nil && to != nil && from.After(*to) {
		return "", ErrInvalidDateRange
	}
	sessions, _, err := s.repo.Session.List(ctx, repository.SessionFilter{From: from, To: to}, 0, 0)
	if err != nil {
		s.logger.Error("list sessions for calendar failed", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone(s.course.Location.String())

	stamp := s.now().UTC()
	for i := range sessions {
		if err := s.addEvent(cal, &sessions[i], stamp); err != nil {
			// one malformed row must not break the whole feed
			s.logger.Warn("skipping session in calendar feed",
				zap.Int64("session_id", sessions[i].SessionID),
				zap.Error(err),
			)
		}
	}
	return cal.Serialize(), nil
}

func (s *calendarService) addEvent(cal *ics.Calendar, m *model.ClassSession, stamp time.Time) error {
	start, err := s.at(m.SessionDate, m.StartTime)
	if err != nil {
		return err
	}
	end, err := s.at(m.SessionDate, m.EndTime)
	if err != nil {
		return err
	}

	event := cal.AddEvent(fmt.Sprintf("session-%d@ready-portal", m.SessionID))
	event.SetDtStampTime(stamp)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(m.Title)
	if m.Description != "" {
		event.SetDescription(m.Description)
	}
	if m.ClientEmail != "" {
		event.AddAttendee(m.ClientEmail, ics.WithCN(m.ClientName))
	}
	return nil
}

// at places a wall-clock time on a calendar date in the course time zone.
func (s *calendarService) at(date time.Time, clock string) (time.Time, error) {
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		// postgres may hand back HH:MM for whole minutes
		if c, err = time.Parse("15:04", clock); err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
		}
	}
	y, mo, d := date.Date()
	return time.Date(y, mo, d, c.Hour(), c.Minute(), c.Second(), 0, s.course.Location), nil
}
