package dto

// ── enrollment / students ──

// EnrollRequest public enrollment form
type EnrollRequest struct {
	FullName      string `json:"full_name"      binding:"required,min=2,max=150"`
	Email         string `json:"email"          binding:"required,email"`
	Phone         string `json:"phone"          binding:"omitempty,max=40"`
	SetSchedule   string `json:"set_schedule"   binding:"required,max=100"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,max=40"`
}

// UpdateStudentRequest admin edit; nil fields are left unchanged
type UpdateStudentRequest struct {
	FullName    *string `json:"full_name"    binding:"omitempty,min=2,max=150"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Phone       *string `json:"phone"        binding:"omitempty,max=40"`
	SetSchedule *string `json:"set_schedule" binding:"omitempty,max=100"`
}

// SetFlagRequest drop / graduate toggles
type SetFlagRequest struct {
	Value bool `json:"value"`
}

// StudentListRequest list filters
type StudentListRequest struct {
	PaginationRequest
	Schedule       string `form:"schedule"`
	IncludeDropped bool   `form:"include_dropped"`
}

// StudentResponse student record
type StudentResponse struct {
	ID            int64   `json:"id"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	SetSchedule   string  `json:"set_schedule"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Dropped       bool    `json:"dropped"`
	GraduatedAt   *string `json:"graduated_at"`
	CreatedAt     string  `json:"created_at"`
}

// CohortResponse a selectable cohort
type CohortResponse struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	Cadence   string `json:"cadence"`
	Sessions  int    `json:"sessions"`
}
