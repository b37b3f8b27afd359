package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/config"
	"github.com/CaMy395/ReadyPortal-sub001/internal/api/handler"
	"github.com/CaMy395/ReadyPortal-sub001/internal/api/middleware"
	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/jwt"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/redis"
)

const (
	enrollRateLimit  = 5
	enrollRateWindow = time.Minute
	loginRateLimit   = 10
	loginRateWindow  = time.Minute
)

// Setup builds the gin engine. rdb and db may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// keep typed-nil clients out of the interfaces
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleStaff)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public
		v1.POST("/auth/login", middleware.RateLimit(limiter, loginRateLimit, loginRateWindow), h.Auth.Login)
		v1.GET("/cohorts", h.Student.ListCohorts)
		v1.POST("/enrollments", middleware.RateLimit(limiter, enrollRateLimit, enrollRateWindow), h.Student.Enroll)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// students
			students := authorized.Group("/students")
			{
				students.GET("", staff, h.Student.ListStudents)
				students.GET("/:id", staff, h.Student.GetStudent)
				students.PUT("/:id", adminOnly, h.Student.UpdateStudent)
				students.PUT("/:id/drop", adminOnly, h.Student.SetDropped)
				students.PUT("/:id/graduate", adminOnly, h.Student.SetGraduated)

				// attendance
				students.GET("/:id/attendance", staff, h.Attendance.ListAttendance)
				students.GET("/:id/progress", staff, h.Attendance.GetProgress)
				students.POST("/:id/attendance/sign-in", staff, h.Attendance.SignIn)
				students.POST("/:id/attendance/sign-out", staff, h.Attendance.SignOut)
				students.POST("/:id/attendance/toggle", staff, h.Attendance.Toggle)
			}
			authorized.GET("/progress", staff, h.Attendance.ListProgress)

			// sessions
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", staff, h.Session.ListSessions)
				sessions.POST("", adminOnly, h.Session.CreateAppointment)
				sessions.GET("/calendar.ics", staff, h.Session.Calendar)
				sessions.POST("/backfill", adminOnly, h.Session.Backfill)
				sessions.GET("/backfill/preview", adminOnly, h.Session.PreviewBackfill)
			}

			// export
			authorized.GET("/export/hours", adminOnly, h.Export.ExportHours)
		}
	}

	return r
}
