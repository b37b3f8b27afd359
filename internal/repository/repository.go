package repository

import "gorm.io/gorm"

// Repository aggregates every repository
type Repository struct {
	User       UserRepository
	Student    StudentRepository
	Attendance AttendanceRepository
	Session    SessionRepository
}

// NewRepository wires gorm-backed repositories
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Student:    NewStudentRepo(db),
		Attendance: NewAttendanceRepo(db),
		Session:    NewSessionRepo(db),
	}
}
