package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/internal/dto"
	"github.com/CaMy395/ReadyPortal-sub001/internal/scheduling"
)

func setupTestSessionService(locker BatchLocker) (SessionService, *mockRepos) {
	repos := newMockRepos()
	return NewSessionService(repos.repo, newTestCourse(), locker, zap.NewNop()), repos
}

func day(s string) time.Time {
	d, err := scheduling.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func itemsFor(resp *dto.BackfillResponse, studentID int64) []dto.BackfillItem {
	var out []dto.BackfillItem
	for _, it := range resp.Items {
		if it.StudentID == studentID {
			out = append(out, it)
		}
	}
	return out
}

// ── Backfill ──

func TestBackfill_EnrollAndRerun(t *testing.T) {
	svc, repos := setupTestSessionService(newMockLocker())
	s := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	ctx := context.Background()

	first, err := svc.Backfill(ctx, &dto.BackfillRequest{})
	if err != nil {
		t.Fatalf("Backfill should succeed: %v", err)
	}
	if first.Summary.Created != 4 || first.Summary.Skipped != 0 || first.Summary.Failed != 0 {
		t.Fatalf("unexpected first summary %+v", first.Summary)
	}

	want := []string{"2025-05-10", "2025-05-17", "2025-05-24", "2025-05-31"}
	items := itemsFor(first, s.StudentID)
	for i, w := range want {
		if items[i].Date != w || items[i].Session != i+1 || items[i].Outcome != "created" {
			t.Errorf("item %d: expected created %s, got %+v", i, w, items[i])
		}
	}
	if len(repos.sessions.sessions) != 4 {
		t.Fatalf("expected 4 stored sessions, got %d", len(repos.sessions.sessions))
	}
	stored := repos.sessions.sessions[0]
	if stored.Title != "Bartending Class - Session 1 of 4" || stored.StartTime != "10:00:00" || stored.ClientName != "Ada Lovelace" {
		t.Errorf("unexpected stored session %+v", stored)
	}
	if stored.Description != "Cohort: May 10 - 31" {
		t.Errorf("unexpected description %q", stored.Description)
	}

	second, err := svc.Backfill(ctx, nil)
	if err != nil {
		t.Fatalf("second Backfill should succeed: %v", err)
	}
	if second.Summary.Created != 0 || second.Summary.Skipped != 4 {
		t.Errorf("second run should skip everything, got %+v", second.Summary)
	}
	for _, it := range second.Items {
		if it.Reason != scheduling.ReasonAlreadyScheduled {
			t.Errorf("unexpected skip reason %q", it.Reason)
		}
	}
	if len(repos.sessions.sessions) != 4 {
		t.Errorf("second run must not add sessions, got %d", len(repos.sessions.sessions))
	}
}

func TestBackfill_FailureIsolation(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	a := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	b := seedStudent(repos, "Grace Hopper", "June 14 - July 5")
	repos.sessions.failDates[sessionKey(a.StudentID, day("2025-05-17"))] = errStoreDown

	resp, err := svc.Backfill(context.Background(), &dto.BackfillRequest{})
	if err != nil {
		t.Fatalf("Backfill should not fail as a whole: %v", err)
	}
	if resp.Summary.Created != 7 || resp.Summary.Failed != 1 {
		t.Errorf("expected 7 created and 1 failed, got %+v", resp.Summary)
	}
	itemsA := itemsFor(resp, a.StudentID)
	if itemsA[1].Outcome != "failed" || itemsA[1].Reason != errStoreDown.Error() {
		t.Errorf("expected the second session to fail, got %+v", itemsA[1])
	}
	if itemsA[2].Outcome != "created" {
		t.Error("later sessions of the same student should still be attempted")
	}
	if len(itemsFor(resp, b.StudentID)) != 4 {
		t.Error("other students should be unaffected")
	}
}

func TestBackfill_ExistenceCheckError(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	repos.sessions.existsErr = errStoreDown

	resp, err := svc.Backfill(context.Background(), nil)
	if err != nil {
		t.Fatalf("Backfill should not fail as a whole: %v", err)
	}
	if resp.Summary.Failed != 4 || len(repos.sessions.sessions) != 0 {
		t.Errorf("every guarded create should fail, got %+v", resp.Summary)
	}
}

func TestBackfill_UniqueViolationCountsAsSkip(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	a := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	repos.sessions.failDates[sessionKey(a.StudentID, day("2025-05-24"))] = gorm.ErrDuplicatedKey

	resp, _ := svc.Backfill(context.Background(), nil)
	if resp.Summary.Created != 3 || resp.Summary.Skipped != 1 || resp.Summary.Failed != 0 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
}

func TestBackfill_UnknownCohortAndOverflow(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	unknown := seedStudent(repos, "Ada Lovelace", "Sometime in Fall")
	endless := seedStudent(repos, "Grace Hopper", "Endless")
	ok := seedStudent(repos, "Alan Turing", "May 10 - 31")

	resp, err := svc.Backfill(context.Background(), nil)
	if err != nil {
		t.Fatalf("Backfill should succeed: %v", err)
	}

	u := itemsFor(resp, unknown.StudentID)
	if len(u) != 1 || u[0].Outcome != "skipped" || u[0].Reason != scheduling.ReasonUnknownCohort {
		t.Errorf("unknown cohort should be a single skip, got %+v", u)
	}
	e := itemsFor(resp, endless.StudentID)
	if len(e) != 1 || e[0].Outcome != "failed" || !strings.HasPrefix(e[0].Reason, scheduling.ErrCouldNotSchedule.Error()) {
		t.Errorf("overflow should be a single failure, got %+v", e)
	}
	if got := len(itemsFor(resp, ok.StudentID)); got != 4 {
		t.Errorf("expected 4 items for the valid student, got %d", got)
	}
	if resp.Summary.Students != 3 {
		t.Errorf("expected 3 students, got %d", resp.Summary.Students)
	}
}

func TestBackfill_SelectedStudents(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	a := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	d := seedStudent(repos, "Grace Hopper", "May 10 - 31")
	d.Dropped = true
	seedStudent(repos, "Alan Turing", "May 10 - 31")

	resp, err := svc.Backfill(context.Background(), &dto.BackfillRequest{StudentIDs: []int64{a.StudentID, d.StudentID, 404}})
	if err != nil {
		t.Fatalf("Backfill should succeed: %v", err)
	}
	if resp.Summary.Students != 3 || resp.Summary.Created != 4 || resp.Summary.Skipped != 2 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
	if got := itemsFor(resp, d.StudentID); len(got) != 1 || got[0].Reason != scheduling.ReasonDropped {
		t.Errorf("dropped student should be skipped, got %+v", got)
	}
	if got := itemsFor(resp, 404); len(got) != 1 || got[0].Reason != reasonNotFound {
		t.Errorf("missing student should be skipped, got %+v", got)
	}
}

func TestBackfill_Locking(t *testing.T) {
	locker := newMockLocker()
	svc, repos := setupTestSessionService(locker)
	seedStudent(repos, "Ada Lovelace", "May 10 - 31")

	locker.held[backfillLockName] = true
	if _, err := svc.Backfill(context.Background(), nil); !errors.Is(err, ErrBackfillInProgress) {
		t.Fatalf("expected ErrBackfillInProgress, got %v", err)
	}

	delete(locker.held, backfillLockName)
	if _, err := svc.Backfill(context.Background(), nil); err != nil {
		t.Fatalf("Backfill should succeed: %v", err)
	}
	if locker.held[backfillLockName] || locker.unlocks != 1 {
		t.Error("lock should be released after the run")
	}

	locker.lockErr = errStoreDown
	resp, err := svc.Backfill(context.Background(), nil)
	if err != nil {
		t.Fatalf("lock backend errors should not block a backfill: %v", err)
	}
	if resp.Summary.Skipped != 4 {
		t.Errorf("expected 4 skips on rerun, got %+v", resp.Summary)
	}
}

func TestBackfill_StudentListError(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	repos.students.listErr = errStoreDown

	if _, err := svc.Backfill(context.Background(), nil); !errors.Is(err, errStoreDown) {
		t.Errorf("expected errStoreDown, got %v", err)
	}
}

func TestPreviewBackfill_DoesNotWrite(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	s := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	id := s.StudentID
	_ = repos.sessions.Create(context.Background(), newSessionFor(id, day("2025-05-17")))

	resp, err := svc.PreviewBackfill(context.Background(), nil)
	if err != nil {
		t.Fatalf("PreviewBackfill should succeed: %v", err)
	}
	if !resp.DryRun {
		t.Error("preview should be flagged dry_run")
	}
	if resp.Summary.Created != 3 || resp.Summary.Skipped != 1 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
	if len(repos.sessions.sessions) != 1 {
		t.Errorf("preview must not write, got %d sessions", len(repos.sessions.sessions))
	}
}

// ── Appointments ──

func TestCreateAppointment(t *testing.T) {
	svc, repos := setupTestSessionService(nil)

	resp, err := svc.CreateAppointment(context.Background(), &dto.CreateAppointmentRequest{
		Title:      "Private tasting",
		ClientName: "Jane Client",
		Date:       "2025-07-04",
		Time:       "18:00:00",
		EndTime:    "20:00:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointment should succeed: %v", err)
	}
	if resp.StudentID != nil || resp.Date != "2025-07-04" {
		t.Errorf("unexpected appointment %+v", resp)
	}
	if len(repos.sessions.sessions) != 1 {
		t.Error("appointment should be stored")
	}

	_, err = svc.CreateAppointment(context.Background(), &dto.CreateAppointmentRequest{
		Title: "Backwards", ClientName: "Jane", Date: "2025-07-04", Time: "20:00:00", EndTime: "18:00:00",
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestSessionList_Filters(t *testing.T) {
	svc, repos := setupTestSessionService(nil)
	s := seedStudent(repos, "Ada Lovelace", "May 10 - 31")
	if _, err := svc.Backfill(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	list, total, err := svc.List(context.Background(), &dto.SessionListRequest{
		StudentID: s.StudentID,
		From:      "2025-05-17",
		To:        "2025-05-24",
	})
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if total != 2 || len(list) != 2 || list[0].Date != "2025-05-17" {
		t.Errorf("unexpected list total=%d %+v", total, list)
	}

	_, _, err = svc.List(context.Background(), &dto.SessionListRequest{From: "2025-06-01", To: "2025-05-01"})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}
