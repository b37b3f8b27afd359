package handler

import "github.com/CaMy395/ReadyPortal-sub001/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth       *AuthHandler
	Student    *StudentHandler
	Attendance *AttendanceHandler
	Session    *SessionHandler
	Export     *ExportHandler
}

// NewHandler wires handlers to services
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Student:    NewStudentHandler(svc.Student),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Session:    NewSessionHandler(svc.Session, svc.Calendar),
		Export:     NewExportHandler(svc.Export),
	}
}
