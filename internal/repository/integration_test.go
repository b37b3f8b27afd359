//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/database"
)

// openTestDB connects to TEST_DATABASE_DSN, migrates and empties the tables.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("TRUNCATE class_sessions, attendance_records, students, users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createStudent(t *testing.T, repo *Repository, name, schedule string) *model.Student {
	t.Helper()
	s := &model.Student{FullName: name, Email: name + "@example.com", SetSchedule: schedule}
	if err := repo.Student.Create(context.Background(), s); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return s
}

func TestSessionRepo_UniquePerStudentDate(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	s := createStudent(t, repo, "ada", "May 10 - 31")
	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	newSession := func(studentID *int64) *model.ClassSession {
		return &model.ClassSession{
			StudentID: studentID, Title: "Bartending Class - Session 1 of 4", ClientName: s.FullName,
			SessionDate: date, StartTime: "10:00:00", EndTime: "16:00:00",
		}
	}

	exists, err := repo.Session.ExistsForStudentOnDate(ctx, s.StudentID, date)
	if err != nil || exists {
		t.Fatalf("expected no session yet, got %v %v", exists, err)
	}
	if err := repo.Session.Create(ctx, newSession(&s.StudentID)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if exists, _ = repo.Session.ExistsForStudentOnDate(ctx, s.StudentID, date); !exists {
		t.Error("session should exist after create")
	}
	if err := repo.Session.Create(ctx, newSession(&s.StudentID)); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("second create should hit the unique index, got %v", err)
	}

	// standalone appointments are not constrained
	if err := repo.Session.Create(ctx, newSession(nil)); err != nil {
		t.Errorf("appointment create: %v", err)
	}
	if err := repo.Session.Create(ctx, newSession(nil)); err != nil {
		t.Errorf("second appointment on the same date: %v", err)
	}

	dates, err := repo.Session.ListDatesByStudent(ctx, s.StudentID)
	if err != nil || len(dates) != 1 {
		t.Errorf("expected one date, got %v %v", dates, err)
	}

	from, to := date, date
	_, total, err := repo.Session.List(ctx, SessionFilter{From: &from, To: &to}, 0, 0)
	if err != nil || total != 3 {
		t.Errorf("expected 3 sessions on the date, got %d %v", total, err)
	}
}

func TestAttendanceRepo_OneOpenRecord(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	s := createStudent(t, repo, "grace", "June 14 - July 5")
	in := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

	open := &model.AttendanceRecord{StudentID: s.StudentID, SignInTime: in}
	if err := repo.Attendance.Create(ctx, open); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Attendance.Create(ctx, &model.AttendanceRecord{StudentID: s.StudentID, SignInTime: in.Add(time.Minute)})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("second open record should be rejected, got %v", err)
	}

	got, err := repo.Attendance.GetOpenByStudent(ctx, s.StudentID)
	if err != nil || got.AttendanceID != open.AttendanceID {
		t.Fatalf("expected the open record, got %+v %v", got, err)
	}

	out := in.Add(6 * time.Hour)
	hours := 6.0
	got.SignOutTime, got.SessionHours = &out, &hours
	if err := repo.Attendance.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.Attendance.GetOpenByStudent(ctx, s.StudentID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("no open record expected after sign-out, got %v", err)
	}

	records, err := repo.Attendance.ListByStudents(ctx, []int64{s.StudentID})
	if err != nil || len(records) != 1 || records[0].SessionHours == nil || *records[0].SessionHours != 6 {
		t.Errorf("unexpected records %+v %v", records, err)
	}
}

func TestStudentRepo_ListActive(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	a := createStudent(t, repo, "alan", "May 10 - 31")
	b := createStudent(t, repo, "barbara", "May 10 - 31")
	b.Dropped = true
	if err := repo.Student.Update(ctx, b); err != nil {
		t.Fatal(err)
	}

	active, err := repo.Student.ListActive(ctx)
	if err != nil || len(active) != 1 || active[0].StudentID != a.StudentID {
		t.Errorf("expected only the active student, got %+v %v", active, err)
	}

	byID, err := repo.Student.ListByIDs(ctx, []int64{a.StudentID, b.StudentID, 999})
	if err != nil || len(byID) != 2 {
		t.Errorf("ListByIDs should return existing rows only, got %d %v", len(byID), err)
	}
}
