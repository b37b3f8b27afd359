package model

import "time"

// ClassSession a generated course session or a standalone booking (class_sessions)
// StudentID is nil for standalone appointments.
type ClassSession struct {
	SessionID   int64     `gorm:"primaryKey;autoIncrement"   json:"id"`
	StudentID   *int64    `gorm:"index"                      json:"student_id,omitempty"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	ClientName  string    `gorm:"type:varchar(150);not null" json:"client_name"`
	ClientEmail string    `gorm:"type:varchar(255)"          json:"client_email"`
	SessionDate time.Time `gorm:"type:date;not null"         json:"date"`
	StartTime   string    `gorm:"type:time;not null"         json:"time"`
	EndTime     string    `gorm:"type:time;not null"         json:"end_time"`
	Description string    `gorm:"type:text"                  json:"description"`
	BaseModel
}

// TableName table name
func (ClassSession) TableName() string { return "class_sessions" }
