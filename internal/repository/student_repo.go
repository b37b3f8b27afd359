package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
)

// StudentFilter list filters
type StudentFilter struct {
	Schedule       string
	IncludeDropped bool
}

// StudentRepository enrollment record access
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Student, error)
	// ListActive every student not dropped, ordered by id
	ListActive(ctx context.Context) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Where("student_id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.Schedule != "" {
		query = query.Where("set_schedule = ?", filter.Schedule)
	}
	if !filter.IncludeDropped {
		query = query.Where("dropped = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []model.Student
	err := query.Order("student_id DESC").Offset(offset).Limit(limit).Find(&students).Error
	return students, total, err
}

func (r *studentRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Student, error) {
	var students []model.Student
	if len(ids) == 0 {
		return students, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", ids).
		Order("student_id ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListActive(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("dropped = ?", false).
		Order("student_id ASC").
		Find(&students).Error
	return students, err
}
