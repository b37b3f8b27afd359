package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
)

// SessionFilter list filters; From/To are inclusive calendar dates
type SessionFilter struct {
	StudentID *int64
	From      *time.Time
	To        *time.Time
}

// SessionRepository generated session / appointment access
type SessionRepository interface {
	Create(ctx context.Context, session *model.ClassSession) error
	// ExistsForStudentOnDate the duplicate-guard existence query
	ExistsForStudentOnDate(ctx context.Context, studentID int64, date time.Time) (bool, error)
	ListDatesByStudent(ctx context.Context, studentID int64) ([]time.Time, error)
	// List returns all matches when limit <= 0
	List(ctx context.Context, filter SessionFilter, offset, limit int) ([]model.ClassSession, int64, error)
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo creates a SessionRepository
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.ClassSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) ExistsForStudentOnDate(ctx context.Context, studentID int64, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ClassSession{}).
		Where("student_id = ? AND session_date = ?", studentID, date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *sessionRepo) ListDatesByStudent(ctx context.Context, studentID int64) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.ClassSession{}).
		Where("student_id = ?", studentID).
		Order("session_date ASC").
		Pluck("session_date", &dates).Error
	return dates, err
}

func (r *sessionRepo) List(ctx context.Context, filter SessionFilter, offset, limit int) ([]model.ClassSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ClassSession{})
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.From != nil {
		query = query.Where("session_date >= ?", filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		query = query.Where("session_date <= ?", filter.To.Format("2006-01-02"))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("session_date ASC, start_time ASC, session_id ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	var sessions []model.ClassSession
	err := query.Find(&sessions).Error
	return sessions, total, err
}
