package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/advisor/internal/ai"
	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/model"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/session"
)

type fakeStudents struct {
	students map[string]*model.StudentSummary
	history  map[string][]model.CourseRecord
	progress []model.CategoryProgress
	err      error
	lookups  int
}

func (f *fakeStudents) GetByID(ctx context.Context, id string) (*model.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.students[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	out := s.Student
	return &out, nil
}

func (f *fakeStudents) GetSummary(ctx context.Context, id string) (*model.StudentSummary, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.students[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (f *fakeStudents) ListCourseHistory(ctx context.Context, id string) ([]model.CourseRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history[id], nil
}

func (f *fakeStudents) ListCategoryProgress(ctx context.Context, id string, programID int64) ([]model.CategoryProgress, error) {
	return f.progress, nil
}

func (f *fakeStudents) Search(ctx context.Context, q string, limit int) ([]model.Student, error) {
	out := make([]model.Student, 0)
	for _, s := range f.students {
		if s.StudentID == q || strings.Contains(s.Email, q) {
			out = append(out, s.Student)
		}
	}
	return out, nil
}

type fakeAdmins struct {
	admins map[string]*model.Admin
}

func (f *fakeAdmins) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	a, ok := f.admins[username]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return a, nil
}

type fakeCourses struct {
	courses map[string]*model.Course
	prereqs map[int64][]model.Course
}

func (f *fakeCourses) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	c, ok := f.courses[code]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourses) ListPrerequisites(ctx context.Context, courseID int64) ([]model.Course, error) {
	return f.prereqs[courseID], nil
}

type fakePlans struct {
	planned []model.PlannedCourse
}

func (f *fakePlans) ListPlanned(ctx context.Context, studentID string) ([]model.PlannedCourse, error) {
	return f.planned, nil
}

type fakeBulletins struct {
	mu      sync.Mutex
	items   []model.Bulletin
	latest  *model.Bulletin
	err     error
	lookups int
}

func (f *fakeBulletins) Create(ctx context.Context, b *model.Bulletin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *b)
	return nil
}

func (f *fakeBulletins) List(ctx context.Context, activeOnly bool) ([]model.Bulletin, error) {
	return f.items, nil
}

func (f *fakeBulletins) LatestActive(ctx context.Context, category string) (*model.Bulletin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	if f.latest == nil {
		return nil, appErr.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeBulletins) Deactivate(ctx context.Context, id int64) error {
	return nil
}

type fakeDocs struct {
	items []model.SupportingDocument
}

func (f *fakeDocs) Create(ctx context.Context, doc *model.SupportingDocument) error {
	doc.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *doc)
	return nil
}

func (f *fakeDocs) List(ctx context.Context) ([]model.SupportingDocument, error) {
	return f.items, nil
}

func (f *fakeDocs) ListActive(ctx context.Context, courseCode string, limit int) ([]model.SupportingDocument, error) {
	out := make([]model.SupportingDocument, 0)
	for _, d := range f.items {
		if d.IsActive && (courseCode == "" || d.CourseCode == "" || d.CourseCode == courseCode) {
			out = append(out, d)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDocs) Deactivate(ctx context.Context, id int64) error {
	return nil
}

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
	history [][]ai.Turn
}

func (f *fakeCompleter) Generate(ctx context.Context, prompt string, history []ai.Turn) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.history = append(f.history, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSearcher struct {
	hits       []model.DocumentHit
	courseCode string
}

func (f *fakeSearcher) Search(ctx context.Context, question, courseCode string) []model.DocumentHit {
	f.courseCode = courseCode
	return f.hits
}

func newLocalFiles(t *testing.T) filestore.Store {
	t.Helper()
	store, err := filestore.New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	return store
}

func newSessionState(t *testing.T) (*session.State, session.Store) {
	t.Helper()
	store, err := session.New(config.SessionConfig{Type: "memory", TTLMinutes: 10, Size: 16})
	require.NoError(t, err)
	return session.NewState(store, "sid"), store
}

func sampleStudents() *fakeStudents {
	return &fakeStudents{
		students: map[string]*model.StudentSummary{
			"1001": {
				Student: model.Student{
					StudentID: "1001", FirstName: "Ada", LastName: "Lovelace", Email: "ada@uni.edu",
					Major: "Computer Science", CurrentGPA: 3.5, CreditsEarned: 45, DegreeProgramID: 1,
				},
				DegreeCode: "BSCS", DegreeName: "BS Computer Science", CreditsRequired: 120,
			},
		},
		history: map[string][]model.CourseRecord{
			"1001": {
				{CourseCode: "CS 215", CourseName: "Intro Programming", CreditHours: 3, Grade: "A", Term: "Fall", AcademicYear: 2022, Status: "Completed"},
				{CourseCode: "MATH 201", CourseName: "Calculus I", CreditHours: 4, Grade: "B", Term: "Fall", AcademicYear: 2022, Status: "Completed"},
				{CourseCode: "CS 301", CourseName: "Systems", CreditHours: 3, Grade: "W", Term: "Spring", AcademicYear: 2023, Status: "Completed"},
				{CourseCode: "ENG 101", CourseName: "Composition", CreditHours: 3, Term: "Spring", AcademicYear: 2024, Status: "InProgress"},
			},
		},
	}
}
