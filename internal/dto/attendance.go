package dto

// ── attendance ──

// AttendanceResponse one attendance record
type AttendanceResponse struct {
	ID           int64    `json:"id"`
	StudentID    int64    `json:"student_id"`
	SignInTime   string   `json:"sign_in_time"`
	SignOutTime  *string  `json:"sign_out_time"`
	SessionHours *float64 `json:"session_hours"`
}

// ClockResponse result of a sign-in / sign-out / toggle
type ClockResponse struct {
	Action string             `json:"action"` // sign_in | sign_out
	State  string             `json:"state"`  // open | closed
	Record AttendanceResponse `json:"record"`
}

// ProgressResponse hours accrual of one student
type ProgressResponse struct {
	StudentID      int64   `json:"student_id"`
	FullName       string  `json:"full_name"`
	SetSchedule    string  `json:"set_schedule"`
	TotalHours     float64 `json:"total_hours"`
	RequiredHours  float64 `json:"required_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	Completed      bool    `json:"completed"`
	State          string  `json:"state"`
	Sessions       int     `json:"sessions"`
}
