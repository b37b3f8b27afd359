package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
	"github.com/CaMy395/ReadyPortal-sub001/internal/service"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/response"
)

// AttendanceHandler class attendance endpoints
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

type clockFunc func(ctx context.Context, studentID int64) (*dto.ClockResponse, error)

// SignIn opens an attendance session
// POST /api/v1/students/:id/attendance/sign-in
func (h *AttendanceHandler) SignIn(c *gin.Context) {
	h.clock(c, h.attendanceSvc.SignIn)
}

// SignOut closes the open attendance session
// POST /api/v1/students/:id/attendance/sign-out
func (h *AttendanceHandler) SignOut(c *gin.Context) {
	h.clock(c, h.attendanceSvc.SignOut)
}

// Toggle signs in or out, whichever applies
// POST /api/v1/students/:id/attendance/toggle
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	h.clock(c, h.attendanceSvc.Toggle)
}

func (h *AttendanceHandler) clock(c *gin.Context, fn clockFunc) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAttendance attendance history of one student
// GET /api/v1/students/:id/attendance
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.attendanceSvc.ListByStudent(c.Request.Context(), id)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetProgress hours accrual of one student
// GET /api/v1/students/:id/progress
func (h *AttendanceHandler) GetProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	progress, err := h.attendanceSvc.Progress(c.Request.Context(), id)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, progress)
}

// ListProgress hours summary of every active student
// GET /api/v1/progress
func (h *AttendanceHandler) ListProgress(c *gin.Context) {
	list, err := h.attendanceSvc.ProgressAll(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "student not found")
	case errors.Is(err, service.ErrStudentDropped):
		response.Conflict(c, 12003, "student has dropped the course")
	case errors.Is(err, scheduling.ErrAlreadySignedIn):
		response.Conflict(c, 13001, "student is already signed in")
	case errors.Is(err, scheduling.ErrNotSignedIn):
		response.Conflict(c, 13002, "student is not signed in")
	default:
		response.InternalError(c)
	}
}
