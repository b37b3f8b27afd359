package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
)

// ── student errors ──

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrUnknownCohort   = errors.New("unknown cohort label")
	ErrStudentDropped  = errors.New("student has dropped the course")
)

// StudentService enrollment records
type StudentService interface {
	Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	SetDropped(ctx context.Context, id int64, dropped bool) (*dto.StudentResponse, error)
	SetGraduated(ctx context.Context, id int64, graduated bool) (*dto.StudentResponse, error)
	ListCohorts() []dto.CohortResponse
}

type studentService struct {
	repo   *repository.Repository
	course *CourseCalendar
	logger *zap.Logger
	now    func() time.Time
}

// NewStudentService creates a StudentService
func NewStudentService(repo *repository.Repository, course *CourseCalendar, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, course: course, logger: logger, now: time.Now}
}

// ────────────────────── Enroll ──────────────────────

func (s *studentService) Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.StudentResponse, error) {
	label := strings.TrimSpace(req.SetSchedule)
	if _, ok := s.course.Cohorts.Resolve(label); !ok {
		return nil, ErrUnknownCohort
	}

	student := &model.Student{
		FullName:      strings.TrimSpace(req.FullName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		SetSchedule:   label,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("create student failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.Int64("student_id", student.StudentID),
		zap.String("set_schedule", student.SetSchedule),
	)
	return toStudentResponse(student), nil
}

// ────────────────────── Read ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id int64) (*dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	filter := repository.StudentFilter{
		Schedule:       req.Schedule,
		IncludeDropped: req.IncludeDropped,
	}
	students, total, err := s.repo.Student.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		student.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		student.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		student.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.SetSchedule != nil {
		label := strings.TrimSpace(*req.SetSchedule)
		if _, ok := s.course.Cohorts.Resolve(label); !ok {
			return nil, ErrUnknownCohort
		}
		student.SetSchedule = label
	}

	return s.save(ctx, student)
}

// SetDropped admin drop toggle
func (s *studentService) SetDropped(ctx context.Context, id int64, dropped bool) (*dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Dropped = dropped
	return s.save(ctx, student)
}

// SetGraduated stamps or clears the graduation time
func (s *studentService) SetGraduated(ctx context.Context, id int64, graduated bool) (*dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if graduated {
		if student.GraduatedAt == nil {
			now := s.now().UTC()
			student.GraduatedAt = &now
		}
	} else {
		student.GraduatedAt = nil
	}
	return s.save(ctx, student)
}

// ListCohorts the labels accepted by the enrollment form
func (s *studentService) ListCohorts() []dto.CohortResponse {
	cohorts := s.course.Cohorts.Cohorts()
	result := make([]dto.CohortResponse, 0, len(cohorts))
	for _, c := range cohorts {
		result = append(result, dto.CohortResponse{
			Label:     c.Label,
			StartDate: c.Start.Format(scheduling.DateLayout),
			Cadence:   string(c.Cadence),
			Sessions:  c.Sessions,
		})
	}
	return result
}

// ── helpers ──

func (s *studentService) load(ctx context.Context, id int64) (*model.Student, error) {
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

func (s *studentService) save(ctx context.Context, student *model.Student) (*dto.StudentResponse, error) {
	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("update student failed", zap.Int64("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

func toStudentResponse(student *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:            student.StudentID,
		FullName:      student.FullName,
		Email:         student.Email,
		Phone:         student.Phone,
		SetSchedule:   student.SetSchedule,
		PaymentMethod: student.PaymentMethod,
		Dropped:       student.Dropped,
		CreatedAt:     student.CreatedAt.Format(time.RFC3339),
	}
	if student.GraduatedAt != nil {
		g := student.GraduatedAt.Format(time.RFC3339)
		resp.GraduatedAt = &g
	}
	return resp
}
