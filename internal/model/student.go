package model

import "time"

// Student course enrollment (students)
type Student struct {
	StudentID     int64      `gorm:"primaryKey;autoIncrement"          json:"id"`
	FullName      string     `gorm:"type:varchar(150);not null"        json:"full_name"`
	Email         string     `gorm:"type:varchar(255);not null"        json:"email"`
	Phone         string     `gorm:"type:varchar(40)"                  json:"phone,omitempty"`
	SetSchedule   string     `gorm:"type:varchar(100);not null"        json:"set_schedule"` // cohort label
	PaymentMethod string     `gorm:"type:varchar(40)"                  json:"payment_method,omitempty"`
	Dropped       bool       `gorm:"not null;default:false"            json:"dropped"`
	GraduatedAt   *time.Time `json:"graduated_at,omitempty"`
	BaseModel
}

// TableName table name
func (Student) TableName() string { return "students" }
