package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
)

// AttendanceService sign-in / sign-out and hours accrual
type AttendanceService interface {
	SignIn(ctx context.Context, studentID int64) (*dto.ClockResponse, error)
	SignOut(ctx context.Context, studentID int64) (*dto.ClockResponse, error)
	// Toggle performs whichever of sign-in / sign-out is legal right now
	Toggle(ctx context.Context, studentID int64) (*dto.ClockResponse, error)
	ListByStudent(ctx context.Context, studentID int64) ([]dto.AttendanceResponse, error)
	Progress(ctx context.Context, studentID int64) (*dto.ProgressResponse, error)
	ProgressAll(ctx context.Context) ([]dto.ProgressResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	course *CourseCalendar
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService creates an AttendanceService
func NewAttendanceService(repo *repository.Repository, course *CourseCalendar, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, course: course, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Clock
// ════════════════════════════════════════════════════════════

func (s *attendanceService) SignIn(ctx context.Context, studentID int64) (*dto.ClockResponse, error) {
	return s.clock(ctx, studentID, scheduling.ActionSignIn)
}

func (s *attendanceService) SignOut(ctx context.Context, studentID int64) (*dto.ClockResponse, error) {
	return s.clock(ctx, studentID, scheduling.ActionSignOut)
}

func (s *attendanceService) Toggle(ctx context.Context, studentID int64) (*dto.ClockResponse, error) {
	return s.clock(ctx, studentID, "")
}

// clock runs one transition; an empty action means toggle.
func (s *attendanceService) clock(ctx context.Context, studentID int64, action scheduling.ClockAction) (*dto.ClockResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	open, err := s.repo.Attendance.GetOpenByStudent(ctx, studentID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		open = nil
	case err != nil:
		s.logger.Error("load open attendance failed", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, err
	}

	state := scheduling.ClockClosed
	if open != nil {
		state = scheduling.ClockOpen
	}
	if action == "" {
		action = scheduling.ToggleAction(state)
	}
	next, err := scheduling.Transition(state, action)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var record *model.AttendanceRecord
	switch action {
	case scheduling.ActionSignIn:
		if student.Dropped {
			return nil, ErrStudentDropped
		}
		record = &model.AttendanceRecord{StudentID: studentID, SignInTime: now}
		if err := s.repo.Attendance.Create(ctx, record); err != nil {
			// the partial unique index rejects a concurrent second open record
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, scheduling.ErrAlreadySignedIn
			}
			s.logger.Error("create attendance failed", zap.Int64("student_id", studentID), zap.Error(err))
			return nil, err
		}
	case scheduling.ActionSignOut:
		entry := toEntry(open)
		if err := scheduling.Close(&entry, now); err != nil {
			return nil, err
		}
		open.SignOutTime = entry.SignOut
		open.SessionHours = entry.Hours
		if err := s.repo.Attendance.Update(ctx, open); err != nil {
			s.logger.Error("close attendance failed", zap.Int64("attendance_id", open.AttendanceID), zap.Error(err))
			return nil, err
		}
		record = open
	}

	s.logger.Info("attendance clocked",
		zap.Int64("student_id", studentID),
		zap.String("action", string(action)),
	)
	return &dto.ClockResponse{
		Action: string(action),
		State:  string(next),
		Record: toAttendanceResponse(record),
	}, nil
}

// ════════════════════════════════════════════════════════════
// History and progress
// ════════════════════════════════════════════════════════════

func (s *attendanceService) ListByStudent(ctx context.Context, studentID int64) ([]dto.AttendanceResponse, error) {
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}
	records, err := s.repo.Attendance.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, toAttendanceResponse(&records[i]))
	}
	return result, nil
}

func (s *attendanceService) Progress(ctx context.Context, studentID int64) (*dto.ProgressResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Attendance.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, err
	}
	p := progressFor(student, records, s.course.RequiredHours)
	return &p, nil
}

// ProgressAll hours of every active student, ordered by id
func (s *attendanceService) ProgressAll(ctx context.Context) ([]dto.ProgressResponse, error) {
	students, err := s.repo.Student.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active students failed", zap.Error(err))
		return nil, err
	}
	return buildProgress(ctx, s.repo, students, s.course.RequiredHours)
}

// ── helpers ──

func (s *attendanceService) loadStudent(ctx context.Context, id int64) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("load student failed", zap.Int64("student_id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// buildProgress loads attendance for students in one query and folds it.
func buildProgress(ctx context.Context, repo *repository.Repository, students []model.Student, required float64) ([]dto.ProgressResponse, error) {
	ids := make([]int64, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.StudentID)
	}
	records, err := repo.Attendance.ListByStudents(ctx, ids)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[int64][]model.AttendanceRecord, len(students))
	for _, r := range records {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}

	result := make([]dto.ProgressResponse, 0, len(students))
	for i := range students {
		result = append(result, progressFor(&students[i], byStudent[students[i].StudentID], required))
	}
	return result, nil
}

func progressFor(student *model.Student, records []model.AttendanceRecord, required float64) dto.ProgressResponse {
	entries := make([]scheduling.AttendanceEntry, 0, len(records))
	sessions := 0
	for i := range records {
		e := toEntry(&records[i])
		entries = append(entries, e)
		if !e.Open() {
			sessions++
		}
	}
	total := scheduling.TotalHours(entries)
	return dto.ProgressResponse{
		StudentID:      student.StudentID,
		FullName:       student.FullName,
		SetSchedule:    student.SetSchedule,
		TotalHours:     total,
		RequiredHours:  required,
		RemainingHours: scheduling.Remaining(total, required),
		Completed:      scheduling.Completed(total, required),
		State:          string(scheduling.StateOf(entries)),
		Sessions:       sessions,
	}
}

func toEntry(r *model.AttendanceRecord) scheduling.AttendanceEntry {
	return scheduling.AttendanceEntry{
		SignIn:  r.SignInTime,
		SignOut: r.SignOutTime,
		Hours:   r.SessionHours,
	}
}

func toAttendanceResponse(r *model.AttendanceRecord) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:           r.AttendanceID,
		StudentID:    r.StudentID,
		SignInTime:   r.SignInTime.Format(time.RFC3339),
		SessionHours: r.SessionHours,
	}
	if r.SignOutTime != nil {
		out := r.SignOutTime.Format(time.RFC3339)
		resp.SignOutTime = &out
	}
	return resp
}
