package dto

// ── class sessions / backfill ──

// BackfillRequest limits a backfill to some students; empty means all
type BackfillRequest struct {
	StudentIDs []int64 `json:"student_ids" binding:"omitempty,dive,min=1"`
}

// BackfillItem per (student, date) outcome
type BackfillItem struct {
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	Date        string `json:"date,omitempty"`
	Session     int    `json:"session,omitempty"`
	Outcome     string `json:"outcome"` // created | skipped | failed
	Reason      string `json:"reason,omitempty"`
}

// BackfillSummary outcome counts
type BackfillSummary struct {
	Students int `json:"students"`
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// BackfillResponse backfill / preview result
type BackfillResponse struct {
	DryRun  bool            `json:"dry_run"`
	Summary BackfillSummary `json:"summary"`
	Items   []BackfillItem  `json:"items"`
}

// CreateAppointmentRequest standalone calendar booking
type CreateAppointmentRequest struct {
	Title       string `json:"title"        binding:"required,max=200"`
	ClientName  string `json:"client_name"  binding:"required,max=150"`
	ClientEmail string `json:"client_email" binding:"omitempty,email"`
	Date        string `json:"date"         binding:"required,datetime=2006-01-02"`
	Time        string `json:"time"         binding:"required,datetime=15:04:05"`
	EndTime     string `json:"end_time"     binding:"required,datetime=15:04:05"`
	Description string `json:"description"  binding:"omitempty,max=2000"`
}

// SessionListRequest list filters; From/To are inclusive dates
type SessionListRequest struct {
	PaginationRequest
	StudentID int64  `form:"student_id" binding:"omitempty,min=1"`
	From      string `form:"from"       binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to"         binding:"omitempty,datetime=2006-01-02"`
}

// SessionResponse a generated session or appointment
type SessionResponse struct {
	ID          int64  `json:"id"`
	StudentID   *int64 `json:"student_id,omitempty"`
	Title       string `json:"title"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}
