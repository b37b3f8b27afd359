package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
)

func setupTestStudentService() (StudentService, *mockRepos) {
	repos := newMockRepos()
	return NewStudentService(repos.repo, newTestCourse(), zap.NewNop()), repos
}

func strPtr(s string) *string { return &s }

// ── Enroll ──

func TestStudentService_Enroll_Success(t *testing.T) {
	svc, repos := setupTestStudentService()

	result, err := svc.Enroll(context.Background(), &dto.EnrollRequest{
		FullName:    "  Ada Lovelace ",
		Email:       "ada@example.com",
		SetSchedule: "May 10 - 31",
	})
	if err != nil {
		t.Fatalf("Enroll should succeed: %v", err)
	}
	if result.ID == 0 {
		t.Error("enrolled student should have an id")
	}
	if result.FullName != "Ada Lovelace" {
		t.Errorf("expected trimmed name, got %q", result.FullName)
	}
	if len(repos.students.students) != 1 {
		t.Errorf("expected 1 stored student, got %d", len(repos.students.students))
	}
}

func TestStudentService_Enroll_UnknownCohort(t *testing.T) {
	svc, repos := setupTestStudentService()

	_, err := svc.Enroll(context.Background(), &dto.EnrollRequest{
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		SetSchedule: "September 1 - 22",
	})
	if !errors.Is(err, ErrUnknownCohort) {
		t.Errorf("expected ErrUnknownCohort, got %v", err)
	}
	if len(repos.students.students) != 0 {
		t.Error("nothing should be stored for an unknown cohort")
	}
}

// ── Read ──

func TestStudentService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestStudentService()

	if _, err := svc.GetByID(context.Background(), 42); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestStudentService_List_FiltersDropped(t *testing.T) {
	svc, repos := setupTestStudentService()
	seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	dropped := seedStudent(repos, "Grace Hopper", "May 10 - 31")
	dropped.Dropped = true
	seedStudent(repos, "Alan Turing", "June 14 - July 5")

	list, total, err := svc.List(context.Background(), &dto.StudentListRequest{Schedule: "May 10 - 31"})
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected 1 active May student, got total=%d len=%d", total, len(list))
	}

	_, total, _ = svc.List(context.Background(), &dto.StudentListRequest{IncludeDropped: true})
	if total != 3 {
		t.Errorf("expected 3 students including dropped, got %d", total)
	}
}

func TestStudentService_List_StoreError(t *testing.T) {
	svc, repos := setupTestStudentService()
	repos.students.listErr = errStoreDown

	if _, _, err := svc.List(context.Background(), &dto.StudentListRequest{}); !errors.Is(err, errStoreDown) {
		t.Errorf("expected errStoreDown, got %v", err)
	}
}

// ── Update ──

func TestStudentService_Update(t *testing.T) {
	svc, repos := setupTestStudentService()
	s := seedStudent(repos, "Ada Lovelace", "May 10 - 31")

	result, err := svc.Update(context.Background(), s.StudentID, &dto.UpdateStudentRequest{
		Phone:       strPtr("555-0100"),
		SetSchedule: strPtr("June 14 - July 5"),
	})
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if result.Phone != "555-0100" || result.SetSchedule != "June 14 - July 5" {
		t.Errorf("unexpected update result %+v", result)
	}
	if result.FullName != "Ada Lovelace" {
		t.Error("nil fields should be left unchanged")
	}

	_, err = svc.Update(context.Background(), s.StudentID, &dto.UpdateStudentRequest{SetSchedule: strPtr("nope")})
	if !errors.Is(err, ErrUnknownCohort) {
		t.Errorf("expected ErrUnknownCohort, got %v", err)
	}
}

func TestStudentService_SetDroppedAndGraduated(t *testing.T) {
	svc, repos := setupTestStudentService()
	s := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	impl := svc.(*studentService)
	impl.now = func() time.Time { return time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC) }

	result, err := svc.SetDropped(context.Background(), s.StudentID, true)
	if err != nil || !result.Dropped {
		t.Fatalf("SetDropped should mark the student dropped: %+v %v", result, err)
	}

	result, err = svc.SetGraduated(context.Background(), s.StudentID, true)
	if err != nil {
		t.Fatalf("SetGraduated should succeed: %v", err)
	}
	if result.GraduatedAt == nil || *result.GraduatedAt != "2025-06-01T15:00:00Z" {
		t.Errorf("unexpected graduated_at %v", result.GraduatedAt)
	}

	result, _ = svc.SetGraduated(context.Background(), s.StudentID, false)
	if result.GraduatedAt != nil {
		t.Error("graduation should be cleared")
	}
}

func TestStudentService_ListCohorts_SortedByStart(t *testing.T) {
	svc, _ := setupTestStudentService()

	cohorts := svc.ListCohorts()
	if len(cohorts) != 4 {
		t.Fatalf("expected 4 cohorts, got %d", len(cohorts))
	}
	if cohorts[0].Label != "Endless" || cohorts[1].Label != "May 10 - 31" {
		t.Errorf("cohorts should be ordered by start date, got %s, %s", cohorts[0].Label, cohorts[1].Label)
	}
	if cohorts[1].StartDate != "2025-05-10" || cohorts[1].Sessions != 4 {
		t.Errorf("unexpected cohort %+v", cohorts[1])
	}
}
