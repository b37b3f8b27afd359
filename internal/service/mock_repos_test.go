package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/config"
	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[int64]*model.Student
	nextID   int64
	listErr  error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[int64]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.nextID++
	student.StudentID = m.nextID
	student.CreatedAt = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id int64) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	cp := *student
	m.students[student.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) sorted(keep func(*model.Student) bool) []model.Student {
	var result []model.Student
	for _, s := range m.students {
		if keep(s) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	all := m.sorted(func(s *model.Student) bool {
		if filter.Schedule != "" && s.SetSchedule != filter.Schedule {
			return false
		}
		return filter.IncludeDropped || !s.Dropped
	})
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudentRepo) ListByIDs(_ context.Context, ids []int64) ([]model.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sorted(func(s *model.Student) bool { return want[s.StudentID] }), nil
}

func (m *mockStudentRepo) ListActive(_ context.Context) ([]model.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(func(s *model.Student) bool { return !s.Dropped }), nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records   []*model.AttendanceRecord
	nextID    int64
	createErr error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	record.AttendanceID = m.nextID
	cp := *record
	m.records = append(m.records, &cp)
	return nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, record *model.AttendanceRecord) error {
	for i, r := range m.records {
		if r.AttendanceID == record.AttendanceID {
			cp := *record
			m.records[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetOpenByStudent(_ context.Context, studentID int64) (*model.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.StudentID == studentID && r.SignOutTime == nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID int64) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.StudentID == studentID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudents(_ context.Context, studentIDs []int64) ([]model.AttendanceRecord, error) {
	want := make(map[int64]bool, len(studentIDs))
	for _, id := range studentIDs {
		want[id] = true
	}
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if want[r.StudentID] {
			result = append(result, *r)
		}
	}
	return result, nil
}

// add seeds a record with explicit times
func (m *mockAttendanceRepo) add(studentID int64, in time.Time, out *time.Time, hours *float64) {
	m.nextID++
	m.records = append(m.records, &model.AttendanceRecord{
		AttendanceID: m.nextID,
		StudentID:    studentID,
		SignInTime:   in,
		SignOutTime:  out,
		SessionHours: hours,
	})
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions []*model.ClassSession
	nextID   int64
	// failDates makes Create fail for "studentID:date" keys
	failDates map[string]error
	existsErr error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{failDates: make(map[string]error)}
}

func sessionKey(studentID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", studentID, date.Format("2006-01-02"))
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.ClassSession) error {
	if session.StudentID != nil {
		if err, ok := m.failDates[sessionKey(*session.StudentID, session.SessionDate)]; ok {
			return err
		}
	}
	m.nextID++
	session.SessionID = m.nextID
	cp := *session
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *mockSessionRepo) ExistsForStudentOnDate(_ context.Context, studentID int64, date time.Time) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, s := range m.sessions {
		if s.StudentID != nil && *s.StudentID == studentID && s.SessionDate.Format("2006-01-02") == date.Format("2006-01-02") {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSessionRepo) ListDatesByStudent(_ context.Context, studentID int64) ([]time.Time, error) {
	var dates []time.Time
	for _, s := range m.sessions {
		if s.StudentID != nil && *s.StudentID == studentID {
			dates = append(dates, s.SessionDate)
		}
	}
	return dates, nil
}

func (m *mockSessionRepo) List(_ context.Context, filter repository.SessionFilter, offset, limit int) ([]model.ClassSession, int64, error) {
	var all []model.ClassSession
	for _, s := range m.sessions {
		if filter.StudentID != nil && (s.StudentID == nil || *s.StudentID != *filter.StudentID) {
			continue
		}
		if filter.From != nil && s.SessionDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.SessionDate.After(*filter.To) {
			continue
		}
		all = append(all, *s)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].SessionDate.Before(all[j].SessionDate) })
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock BatchLocker ──

type mockLocker struct {
	held    map[string]bool
	lockErr error
	unlocks int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]bool)}
}

func (m *mockLocker) TryLock(_ context.Context, name string, _ time.Duration) (bool, error) {
	if m.lockErr != nil {
		return false, m.lockErr
	}
	if m.held[name] {
		return false, nil
	}
	m.held[name] = true
	return true, nil
}

func (m *mockLocker) Unlock(_ context.Context, name string) error {
	delete(m.held, name)
	m.unlocks++
	return nil
}

// ── test helpers ──

type mockRepos struct {
	repo       *repository.Repository
	users      *mockUserRepo
	students   *mockStudentRepo
	attendance *mockAttendanceRepo
	sessions   *mockSessionRepo
}

func newMockRepos() *mockRepos {
	m := &mockRepos{
		users:      newMockUserRepo(),
		students:   newMockStudentRepo(),
		attendance: newMockAttendanceRepo(),
		sessions:   newMockSessionRepo(),
	}
	m.repo = &repository.Repository{
		User:       m.users,
		Student:    m.students,
		Attendance: m.attendance,
		Session:    m.sessions,
	}
	return m
}

func testCourseConfig() config.CourseConfig {
	return config.CourseConfig{
		SessionCount:     4,
		RequiredHours:    24,
		Weekdays:         []string{"monday", "tuesday", "wednesday", "thursday"},
		MaxLookaheadDays: 400,
		SessionStart:     "10:00:00",
		SessionEnd:       "16:00:00",
		SessionTitle:     "Bartending Class",
		Timezone:         "UTC",
		BackfillLockTTL:  time.Minute,
		Cohorts: []config.CohortConfig{
			{Label: "May 10 - 31", StartDate: "2025-05-10", Cadence: "weekly", Sessions: 4},
			{Label: "June 14 - July 5", StartDate: "2025-06-14", Cadence: "weekly", Sessions: 4},
			{Label: "Weekday Intensive - June 16", StartDate: "2025-06-16", Cadence: "weekdays", Sessions: 8},
			{Label: "Endless", StartDate: "2025-01-06", Cadence: "weekly", Sessions: 100},
		},
	}
}

func newTestCourse() *CourseCalendar {
	cfg := testCourseConfig()
	course, err := NewCourseCalendar(&cfg)
	if err != nil {
		panic(err)
	}
	return course
}

func seedStudent(m *mockRepos, name, schedule string) *model.Student {
	s := &model.Student{FullName: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com", SetSchedule: schedule}
	_ = m.students.Create(context.Background(), s)
	return s
}

func newSessionFor(studentID int64, date time.Time) *model.ClassSession {
	return &model.ClassSession{
		StudentID:   &studentID,
		Title:       "Existing",
		ClientName:  "Existing",
		SessionDate: date,
		StartTime:   "10:00:00",
		EndTime:     "16:00:00",
	}
}
