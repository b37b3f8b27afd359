package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/service"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/response"
)

// StudentHandler enrollment and student record endpoints
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler creates a StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListCohorts selectable cohorts
// GET /api/v1/cohorts
func (h *StudentHandler) ListCohorts(c *gin.Context) {
	response.OK(c, gin.H{"list": h.studentSvc.ListCohorts()})
}

// Enroll public enrollment form
// POST /api/v1/enrollments
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	student, err := h.studentSvc.Enroll(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// ListStudents paginated student list
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetStudent student detail
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// UpdateStudent admin edit
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// SetDropped marks or clears the dropped flag
// PUT /api/v1/students/:id/drop
func (h *StudentHandler) SetDropped(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	student, err := h.studentSvc.SetDropped(c.Request.Context(), id, req.Value)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// SetGraduated marks or clears graduation
// PUT /api/v1/students/:id/graduate
func (h *StudentHandler) SetGraduated(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	student, err := h.studentSvc.SetGraduated(c.Request.Context(), id, req.Value)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "student not found")
	case errors.Is(err, service.ErrUnknownCohort):
		response.BadRequest(c, 12002, "unknown cohort label")
	case errors.Is(err, service.ErrStudentDropped):
		response.Conflict(c, 12003, "student has dropped the course")
	default:
		response.InternalError(c)
	}
}
