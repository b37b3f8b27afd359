package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CaMy395/ReadyPortal-sub001/config"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/jwt"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/redis"
)

// TokenRevoker access-token blacklist
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// BatchLocker short-lived named locks gating batch operations
type BatchLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

// Service aggregates every service
type Service struct {
	Auth       AuthService
	Student    StudentService
	Attendance AttendanceService
	Session    SessionService
	Calendar   CalendarService
	Export     ExportService
}

// NewService wires services; rdb may be nil, in which case token revocation
// and the backfill gate are disabled.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) (*Service, error) {
	course, err := NewCourseCalendar(&cfg.Course)
	if err != nil {
		return nil, err
	}

	var (
		revoker TokenRevoker
		locker  BatchLocker
	)
	if rdb != nil {
		revoker = rdb
		locker = rdb
	}

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, revoker, logger),
		Student:    NewStudentService(repo, course, logger),
		Attendance: NewAttendanceService(repo, course, logger),
		Session:    NewSessionService(repo, course, locker, logger),
		Calendar:   NewCalendarService(repo, course, logger),
		Export:     NewExportService(repo, course, logger),
	}, nil
}
