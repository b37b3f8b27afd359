package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
)

// AttendanceRepository attendance record access
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	Update(ctx context.Context, record *model.AttendanceRecord) error
	// GetOpenByStudent returns gorm.ErrRecordNotFound when the student is signed out
	GetOpenByStudent(ctx context.Context, studentID int64) (*model.AttendanceRecord, error)
	ListByStudent(ctx context.Context, studentID int64) ([]model.AttendanceRecord, error)
	ListByStudents(ctx context.Context, studentIDs []int64) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) Update(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *attendanceRepo) GetOpenByStudent(ctx context.Context, studentID int64) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND sign_out_time IS NULL", studentID).
		Order("sign_in_time DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID int64) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("sign_in_time ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByStudents(ctx context.Context, studentIDs []int64) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	if len(studentIDs) == 0 {
		return records, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", studentIDs).
		Order("student_id ASC, sign_in_time ASC").
		Find(&records).Error
	return records, err
}
