package model

import "time"

// AttendanceRecord one clocked class session (attendance_records)
// At most one record per student has SignOutTime == nil.
type AttendanceRecord struct {
	AttendanceID int64      `gorm:"primaryKey;autoIncrement"    json:"id"`
	StudentID    int64      `gorm:"not null;index"              json:"student_id"`
	SignInTime   time.Time  `gorm:"not null"                    json:"sign_in_time"`
	SignOutTime  *time.Time `json:"sign_out_time"`
	SessionHours *float64   `gorm:"type:numeric(6,2)"           json:"session_hours"`
	BaseModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"-"`
}

// TableName table name
func (AttendanceRecord) TableName() string { return "attendance_records" }
