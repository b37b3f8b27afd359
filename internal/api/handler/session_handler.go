package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
	"github.com/CaMy395/ReadyPortal-sub001/internal/service"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/response"
)

// SessionHandler generated sessions, appointments and the calendar feed
type SessionHandler struct {
	sessionSvc  service.SessionService
	calendarSvc service.CalendarService
}

// NewSessionHandler creates a SessionHandler
func NewSessionHandler(sessionSvc service.SessionService, calendarSvc service.CalendarService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, calendarSvc: calendarSvc}
}

// Backfill creates missing cohort sessions
// POST /api/v1/sessions/backfill
func (h *SessionHandler) Backfill(c *gin.Context) {
	var req dto.BackfillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "validation failed")
			return
		}
	}

	result, err := h.sessionSvc.Backfill(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// PreviewBackfill dry run of Backfill
// GET /api/v1/sessions/backfill/preview?student_id=1&student_id=2
func (h *SessionHandler) PreviewBackfill(c *gin.Context) {
	var req dto.BackfillRequest
	for _, raw := range c.QueryArray("student_id") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, 10001, "invalid student_id")
			return
		}
		req.StudentIDs = append(req.StudentIDs, id)
	}

	result, err := h.sessionSvc.PreviewBackfill(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListSessions paginated sessions
// GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	list, total, err := h.sessionSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CreateAppointment standalone booking
// POST /api/v1/sessions
func (h *SessionHandler) CreateAppointment(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	session, err := h.sessionSvc.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// Calendar iCalendar feed
// GET /api/v1/sessions/calendar.ics?from=2025-05-01&to=2025-08-31
func (h *SessionHandler) Calendar(c *gin.Context) {
	from, ok := optionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := optionalDate(c, "to")
	if !ok {
		return
	}

	feed, err := h.calendarSvc.Feed(c.Request.Context(), from, to)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=sessions.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func optionalDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := scheduling.ParseDate(raw)
	if err != nil {
		response.BadRequest(c, 10001, "invalid "+key)
		return nil, false
	}
	return &d, true
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBackfillInProgress):
		response.Conflict(c, 14001, "a session backfill is already running")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 14002, "end time must be after start time")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 14003, "from date must not be after to date")
	default:
		response.InternalError(c)
	}
}
