package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/advisor/internal/ai"
	"github.com/xxxsen/advisor/internal/chatlog"
	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/handler"
	"github.com/xxxsen/advisor/internal/metrics"
	"github.com/xxxsen/advisor/internal/middleware"
	"github.com/xxxsen/advisor/internal/model"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/pkg/jwt"
	"github.com/xxxsen/advisor/internal/pkg/password"
	"github.com/xxxsen/advisor/internal/service"
	"github.com/xxxsen/advisor/internal/session"
)

var testSecret = []byte("test-secret")

type memStudents struct {
	summary *model.StudentSummary
	history []model.CourseRecord
}

func (m *memStudents) GetByID(ctx context.Context, id string) (*model.Student, error) {
	if m.summary == nil || id != m.summary.StudentID {
		return nil, appErr.ErrNotFound
	}
	s := m.summary.Student
	return &s, nil
}

func (m *memStudents) GetSummary(ctx context.Context, id string) (*model.StudentSummary, error) {
	if m.summary == nil || id != m.summary.StudentID {
		return nil, appErr.ErrNotFound
	}
	s := *m.summary
	return &s, nil
}

func (m *memStudents) ListCourseHistory(ctx context.Context, id string) ([]model.CourseRecord, error) {
	return m.history, nil
}

func (m *memStudents) ListCategoryProgress(ctx context.Context, id string, programID int64) ([]model.CategoryProgress, error) {
	return []model.CategoryProgress{}, nil
}

func (m *memStudents) Search(ctx context.Context, q string, limit int) ([]model.Student, error) {
	if m.summary != nil && (q == m.summary.StudentID || strings.Contains(m.summary.Email, q)) {
		return []model.Student{m.summary.Student}, nil
	}
	return []model.Student{}, nil
}

type memAdmins struct {
	admin *model.Admin
}

func (m *memAdmins) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	if m.admin == nil || m.admin.Username != username {
		return nil, appErr.ErrNotFound
	}
	return m.admin, nil
}

type memCourses struct{}

func (memCourses) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	if code != "CS 301" {
		return nil, appErr.ErrNotFound
	}
	return &model.Course{CourseID: 2, CourseCode: "CS 301", CourseName: "Systems", CreditHours: 3, TypicalTerms: "Fall"}, nil
}

func (memCourses) ListPrerequisites(ctx context.Context, courseID int64) ([]model.Course, error) {
	return []model.Course{{CourseID: 1, CourseCode: "CS 215"}}, nil
}

type memPlans struct{}

func (memPlans) ListPlanned(ctx context.Context, studentID string) ([]model.PlannedCourse, error) {
	return []model.PlannedCourse{}, nil
}

type memBulletins struct {
	items []model.Bulletin
}

func (m *memBulletins) Create(ctx context.Context, b *model.Bulletin) error {
	b.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *b)
	return nil
}

func (m *memBulletins) List(ctx context.Context, activeOnly bool) ([]model.Bulletin, error) {
	return m.items, nil
}

func (m *memBulletins) LatestActive(ctx context.Context, category string) (*model.Bulletin, error) {
	return nil, appErr.ErrNotFound
}

func (m *memBulletins) Deactivate(ctx context.Context, id int64) error {
	if id > int64(len(m.items)) {
		return appErr.ErrNotFound
	}
	m.items[id-1].IsActive = false
	return nil
}

type memDocs struct{}

func (memDocs) Create(ctx context.Context, doc *model.SupportingDocument) error { return nil }

func (memDocs) List(ctx context.Context) ([]model.SupportingDocument, error) {
	return []model.SupportingDocument{}, nil
}

func (memDocs) ListActive(ctx context.Context, courseCode string, limit int) ([]model.SupportingDocument, error) {
	return []model.SupportingDocument{}, nil
}

func (memDocs) Deactivate(ctx context.Context, id int64) error { return appErr.ErrNotFound }

type staticCompleter struct {
	calls int
}

func (s *staticCompleter) Generate(ctx context.Context, prompt string, history []ai.Turn) (string, error) {
	s.calls++
	return "ok", nil
}

type testEnv struct {
	router    http.Handler
	sessions  session.Store
	completer *staticCompleter
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := password.Hash("secret")
	require.NoError(t, err)
	students := &memStudents{
		summary: &model.StudentSummary{
			Student: model.Student{
				StudentID: "1001", FirstName: "Ada", LastName: "Lovelace", Email: "ada@uni.edu",
				Major: "Computer Science", CurrentGPA: 3.5, CreditsEarned: 7, PasswordHash: hash,
			},
			CreditsRequired: 120,
		},
		history: []model.CourseRecord{
			{CourseCode: "CS 215", CourseName: "Intro Programming", CreditHours: 3, Grade: "A", Term: "Fall", AcademicYear: 2022, Status: "Completed"},
			{CourseCode: "MATH 201", CourseName: "Calculus I", CreditHours: 4, Grade: "B", Term: "Fall", AcademicYear: 2022, Status: "Completed"},
		},
	}
	admins := &memAdmins{admin: &model.Admin{AdminID: 1, Username: "registrar", FullName: "Registrar", PasswordHash: hash}}

	sessions, err := session.New(config.SessionConfig{Type: "memory", TTLMinutes: 10, Size: 64})
	require.NoError(t, err)
	logs, err := chatlog.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store, err := filestore.New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	completer := &staticCompleter{}
	chatCfg := config.DefaultChat()
	m := metrics.New()
	bulletins := &memBulletins{}

	snapshots := service.NewStudentContextService(students)
	studentService := service.NewStudentService(students, snapshots)
	advising := service.NewAdvisingService(students, memCourses{}, memPlans{})
	auth := service.NewAuthService(students, admins, sessions, testSecret, time.Hour)
	docs := service.NewSupportingDocService(memDocs{}, store, chatCfg)
	chat := service.NewChatService(snapshots, logs, completer, bulletins, store, docs, m, chatCfg)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(auth),
		Chat:      handler.NewChatHandler(chat, sessions),
		Students:  handler.NewStudentHandler(studentService, advising),
		Admin:     handler.NewAdminHandler(service.NewBulletinService(bulletins, store, m, chatCfg), docs, studentService),
		Files:     handler.NewFileHandler(store),
		JWTSecret: testSecret,
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return &testEnv{router: engine, sessions: sessions, completer: completer}
}

func tokenFor(t *testing.T, userID, role, sid string) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, role, sid, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"message"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, env *testEnv, req *http.Request, token string) envelope {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	var out envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var r io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		r = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
