package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
)

// ── session errors ──

var (
	ErrBackfillInProgress = errors.New("a session backfill is already running")
	ErrInvalidTimeRange   = errors.New("end time must be after start time")
	ErrInvalidDateRange   = errors.New("from date must not be after to date")
)

const (
	backfillLockName = "sessions:backfill"
	reasonNotFound   = "student not found"
)

// SessionService generated course sessions and standalone appointments
type SessionService interface {
	// Backfill creates the missing cohort sessions of the selected students
	// (every active student when req.StudentIDs is empty).
	Backfill(ctx context.Context, req *dto.BackfillRequest) (*dto.BackfillResponse, error)
	// PreviewBackfill reports what Backfill would do without writing.
	PreviewBackfill(ctx context.Context, req *dto.BackfillRequest) (*dto.BackfillResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.SessionResponse, error)
	List(ctx context.Context, req *dto.SessionListRequest) ([]dto.SessionResponse, int64, error)
}

type sessionService struct {
	repo   *repository.Repository
	course *CourseCalendar
	locker BatchLocker
	logger *zap.Logger
}

// NewSessionService creates a SessionService; locker may be nil
func NewSessionService(
	repo *repository.Repository,
	course *CourseCalendar,
	locker BatchLocker,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		repo:   repo,
		course: course,
		locker: locker,
		logger: logger,
	}
}

// ════════════════════════════════════════════════════════════
// Backfill
// ════════════════════════════════════════════════════════════
//
// Students and their dates are processed sequentially. Every failure is
// scoped to one item (or one student for scheduling overflow) and is
// reported in the result instead of aborting the batch.

func (s *sessionService) Backfill(ctx context.Context, req *dto.BackfillRequest) (*dto.BackfillResponse, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.run(ctx, req, false)
}

func (s *sessionService) PreviewBackfill(ctx context.Context, req *dto.BackfillRequest) (*dto.BackfillResponse, error) {
	return s.run(ctx, req, true)
}

// acquire takes the batch lock. A lock backend error only disables the gate.
func (s *sessionService) acquire(ctx context.Context) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}
	ok, err := s.locker.TryLock(ctx, backfillLockName, s.course.BackfillLockTTL)
	if err != nil {
		s.logger.Warn("backfill lock unavailable, continuing without it", zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, ErrBackfillInProgress
	}
	return func() {
		// the request context may already be cancelled here
		if err := s.locker.Unlock(context.Background(), backfillLockName); err != nil {
			s.logger.Warn("release backfill lock failed", zap.Error(err))
		}
	}, nil
}

func (s *sessionService) run(ctx context.Context, req *dto.BackfillRequest, dryRun bool) (*dto.BackfillResponse, error) {
	students, missing, err := s.selectStudents(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.BackfillResponse{DryRun: dryRun, Items: make([]dto.BackfillItem, 0)}
	var tally scheduling.Tally
	add := func(item dto.BackfillItem) {
		tally.Count(scheduling.Outcome(item.Outcome))
		resp.Items = append(resp.Items, item)
	}

	for _, id := range missing {
		add(dto.BackfillItem{StudentID: id, Outcome: string(scheduling.OutcomeSkipped), Reason: reasonNotFound})
	}

	for i := range students {
		for _, item := range s.backfillStudent(ctx, &students[i], dryRun) {
			add(item)
		}
	}

	resp.Summary = dto.BackfillSummary{
		Students: len(students) + len(missing),
		Created:  tally.Created,
		Skipped:  tally.Skipped,
		Failed:   tally.Failed,
	}
	s.logger.Info("session backfill finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("students", resp.Summary.Students),
		zap.Int("created", tally.Created),
		zap.Int("skipped", tally.Skipped),
		zap.Int("failed", tally.Failed),
	)
	return resp, nil
}

// selectStudents resolves the batch; ids that match no student are returned as missing.
func (s *sessionService) selectStudents(ctx context.Context, req *dto.BackfillRequest) ([]model.Student, []int64, error) {
	if req == nil || len(req.StudentIDs) == 0 {
		students, err := s.repo.Student.ListActive(ctx)
		if err != nil {
			s.logger.Error("list active students failed", zap.Error(err))
			return nil, nil, err
		}
		return students, nil, nil
	}

	students, err := s.repo.Student.ListByIDs(ctx, req.StudentIDs)
	if err != nil {
		s.logger.Error("list students by id failed", zap.Error(err))
		return nil, nil, err
	}
	found := make(map[int64]bool, len(students))
	for _, st := range students {
		found[st.StudentID] = true
	}
	var missing []int64
	for _, id := range req.StudentIDs {
		if !found[id] {
			missing = append(missing, id)
			found[id] = true
		}
	}
	return students, missing, nil
}

func (s *sessionService) backfillStudent(ctx context.Context, student *model.Student, dryRun bool) []dto.BackfillItem {
	base := dto.BackfillItem{StudentID: student.StudentID, StudentName: student.FullName}
	single := func(outcome scheduling.Outcome, reason string) []dto.BackfillItem {
		item := base
		item.Outcome = string(outcome)
		item.Reason = reason
		return []dto.BackfillItem{item}
	}

	if student.Dropped {
		return single(scheduling.OutcomeSkipped, scheduling.ReasonDropped)
	}

	dates, cohort, ok, err := s.course.SessionDates(student.SetSchedule)
	if !ok {
		s.logger.Warn("skipping student with unknown cohort",
			zap.Int64("student_id", student.StudentID),
			zap.String("set_schedule", student.SetSchedule),
		)
		return single(scheduling.OutcomeSkipped, scheduling.ReasonUnknownCohort)
	}
	if err != nil {
		s.logger.Warn("could not schedule student",
			zap.Int64("student_id", student.StudentID),
			zap.String("set_schedule", student.SetSchedule),
			zap.Error(err),
		)
		return single(scheduling.OutcomeFailed, err.Error())
	}

	if dryRun {
		booked, err := s.repo.Session.ListDatesByStudent(ctx, student.StudentID)
		if err != nil {
			s.logger.Error("list booked dates failed", zap.Int64("student_id", student.StudentID), zap.Error(err))
			return single(scheduling.OutcomeFailed, err.Error())
		}
		items := make([]dto.BackfillItem, 0, len(dates))
		for _, d := range scheduling.Plan(student.StudentID, dates, scheduling.NewBookedSet(booked)) {
			items = append(items, decisionItem(base, d))
		}
		return items
	}

	items := make([]dto.BackfillItem, 0, len(dates))
	seen := scheduling.NewBookedSet(nil)
	for i, date := range dates {
		d := scheduling.Decision{StudentID: student.StudentID, Date: date, Index: i + 1}
		if seen.Has(date) {
			d.Outcome, d.Reason = scheduling.OutcomeSkipped, scheduling.ReasonAlreadyScheduled
		} else {
			seen.Add(date)
			d.Outcome, d.Reason = s.guardedCreate(ctx, student, cohort, date, i+1, len(dates))
		}
		items = append(items, decisionItem(base, d))
	}
	return items
}

// guardedCreate is the duplicate guard: an existence check by (student, date)
// followed by the insert. The unique index turns a lost race into a skip.
func (s *sessionService) guardedCreate(
	ctx context.Context,
	student *model.Student,
	cohort scheduling.Cohort,
	date time.Time,
	index, total int,
) (scheduling.Outcome, string) {
	exists, err := s.repo.Session.ExistsForStudentOnDate(ctx, student.StudentID, date)
	if err != nil {
		s.logger.Error("session existence check failed",
			zap.Int64("student_id", student.StudentID),
			zap.String("date", date.Format(scheduling.DateLayout)),
			zap.Error(err),
		)
		return scheduling.OutcomeFailed, err.Error()
	}
	if exists {
		return scheduling.OutcomeSkipped, scheduling.ReasonAlreadyScheduled
	}

	id := student.StudentID
	session := &model.ClassSession{
		StudentID:   &id,
		Title:       fmt.Sprintf("%s - Session %d of %d", s.course.SessionTitle, index, total),
		ClientName:  student.FullName,
		ClientEmail: student.Email,
		SessionDate: date,
		StartTime:   s.course.SessionStart,
		EndTime:     s.course.SessionEnd,
		Description: "Cohort: " + cohort.Label,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduling.OutcomeSkipped, scheduling.ReasonAlreadyScheduled
		}
		s.logger.Error("create session failed",
			zap.Int64("student_id", student.StudentID),
			zap.String("date", date.Format(scheduling.DateLayout)),
			zap.Error(err),
		)
		return scheduling.OutcomeFailed, err.Error()
	}
	return scheduling.OutcomeCreated, ""
}

func decisionItem(base dto.BackfillItem, d scheduling.Decision) dto.BackfillItem {
	base.Date = d.Date.Format(scheduling.DateLayout)
	base.Session = d.Index
	base.Outcome = string(d.Outcome)
	base.Reason = d.Reason
	return base
}

// ════════════════════════════════════════════════════════════
// Appointments and listing
// ════════════════════════════════════════════════════════════

func (s *sessionService) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.SessionResponse, error) {
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.EndTime <= req.Time {
		return nil, ErrInvalidTimeRange
	}

	session := &model.ClassSession{
		Title:       req.Title,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		SessionDate: date,
		StartTime:   req.Time,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("create appointment failed", zap.Error(err))
		return nil, err
	}
	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *sessionService) List(ctx context.Context, req *dto.SessionListRequest) ([]dto.SessionResponse, int64, error) {
	filter, err := sessionFilter(req)
	if err != nil {
		return nil, 0, err
	}
	sessions, total, err := s.repo.Session.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i]))
	}
	return result, total, nil
}

func sessionFilter(req *dto.SessionListRequest) (repository.SessionFilter, error) {
	var filter repository.SessionFilter
	if req.StudentID > 0 {
		id := req.StudentID
		filter.StudentID = &id
	}
	if req.From != "" {
		from, err := scheduling.ParseDate(req.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := scheduling.ParseDate(req.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, ErrInvalidDateRange
	}
	return filter, nil
}

func toSessionResponse(m *model.ClassSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:          m.SessionID,
		StudentID:   m.StudentID,
		Title:       m.Title,
		ClientName:  m.ClientName,
		ClientEmail: m.ClientEmail,
		Date:        m.SessionDate.Format(scheduling.DateLayout),
		Time:        m.StartTime,
		EndTime:     m.EndTime,
		Description: m.Description,
	}
}
