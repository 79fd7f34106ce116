package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/errcode"
	"github.com/xxxsen/advisor/internal/pkg/jwt"
	"github.com/xxxsen/advisor/internal/prompt"
	"github.com/xxxsen/advisor/internal/service"
)

func TestLoginRoles(t *testing.T) {
	env := setupRouter(t)

	tests := []struct {
		name  string
		login string
		pass  string
		code  int
		role  string
	}{
		{name: "student", login: "1001", pass: "secret", code: 0, role: jwt.RoleStudent},
		{name: "admin", login: "registrar", pass: "secret", code: 0, role: jwt.RoleAdmin},
		{name: "wrong password", login: "1001", pass: "nope", code: errcode.ErrUnauthorized},
		{name: "unknown student", login: "9999", pass: "secret", code: errcode.ErrUnauthorized},
		{name: "missing fields", login: " ", pass: "", code: errcode.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := do(t, env, jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{"login": tt.login, "password": tt.pass}), "")
			require.Equal(t, tt.code, out.Code)
			if tt.code != 0 {
				return
			}
			var res service.LoginResult
			require.NoError(t, json.Unmarshal(out.Data, &res))
			require.Equal(t, tt.role, res.Role)
			require.NotEmpty(t, res.Token)
		})
	}
}

func TestRoleGuards(t *testing.T) {
	env := setupRouter(t)
	student := tokenFor(t, "1001", jwt.RoleStudent, "s1")
	admin := tokenFor(t, "registrar", jwt.RoleAdmin, "a1")

	out := do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/students/me/gpa", nil), "")
	require.Equal(t, errcode.ErrUnauthorized, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/admin/students?q=1001", nil), student)
	require.Equal(t, errcode.ErrForbidden, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages", nil), admin)
	require.Equal(t, errcode.ErrForbidden, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/admin/students?q=1001", nil), admin)
	require.Equal(t, 0, out.Code)
	var found []model.Student
	require.NoError(t, json.Unmarshal(out.Data, &found))
	require.Len(t, found, 1)
	require.Equal(t, "ada@uni.edu", found[0].Email)
}

func TestChatFlow(t *testing.T) {
	env := setupRouter(t)
	token := tokenFor(t, "1001", jwt.RoleStudent, "chat-session")

	out := do(t, env, multipartRequest(t, "/api/v1/chat/messages", map[string]string{"message": "Show my profile"}, "", nil), token)
	require.Equal(t, 0, out.Code)
	var res service.SendResult
	require.NoError(t, json.Unmarshal(out.Data, &res))
	require.Equal(t, prompt.IntentProfile, res.Intent)
	require.Contains(t, res.Reply, "Ada Lovelace")
	require.Len(t, res.Messages, 2)

	out = do(t, env, multipartRequest(t, "/api/v1/chat/messages", map[string]string{"message": "Tell me about CS 301"}, "", nil), token)
	require.Equal(t, 0, out.Code)
	require.NoError(t, json.Unmarshal(out.Data, &res))
	require.Equal(t, prompt.NoCatalogMessage, res.Reply)
	require.Zero(t, env.completer.calls)

	out = do(t, env, multipartRequest(t, "/api/v1/chat/messages", nil, "notes.txt", []byte("hello")), token)
	require.Equal(t, errcode.ErrInputRejected, out.Code)
	require.Equal(t, "Only PDF files are allowed.", out.Msg)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages?format=html", nil), token)
	require.Equal(t, 0, out.Code)
	var rendered struct {
		ConversationID string                    `json:"conversation_id"`
		Messages       []service.RenderedMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &rendered))
	require.Equal(t, res.ConversationID, rendered.ConversationID)
	require.Len(t, rendered.Messages, 4)
	require.Contains(t, rendered.Messages[0].HTML, "<p>Show my profile</p>")

	out = do(t, env, httptest.NewRequest(http.MethodDelete, "/api/v1/chat", nil), token)
	require.Equal(t, 0, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages", nil), token)
	require.Equal(t, 0, out.Code)
	var history struct {
		ConversationID string              `json:"conversation_id"`
		Messages       []model.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &history))
	require.Empty(t, history.ConversationID)
	require.Empty(t, history.Messages)
}

func TestStudentAdvisingRoutes(t *testing.T) {
	env := setupRouter(t)
	token := tokenFor(t, "1001", jwt.RoleStudent, "s1")

	out := do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/students/me/gpa", nil), token)
	require.Equal(t, 0, out.Code)
	var gpa model.GpaSummary
	require.NoError(t, json.Unmarshal(out.Data, &gpa))
	require.Equal(t, 7, gpa.GradedCredits)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/students/me/prerequisites?course=CS%20301", nil), token)
	require.Equal(t, 0, out.Code)
	var pre model.PrerequisiteCheckResult
	require.NoError(t, json.Unmarshal(out.Data, &pre))
	require.True(t, pre.Satisfied)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/students/me/gpa/needed?target=abc&remaining=30", nil), token)
	require.Equal(t, errcode.ErrInvalid, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/students/me/conflicts?course=CS%20301&term=Spring&year=x", nil), token)
	require.Equal(t, errcode.ErrInvalid, out.Code)

	out = do(t, env, jsonRequest(http.MethodPost, "/api/v1/students/me/gpa/what-if", map[string]interface{}{
		"courses": []map[string]interface{}{{"course_code": "CS 301", "credit_hours": 3, "grade": "A"}},
	}), token)
	require.Equal(t, 0, out.Code)
	var whatIf model.WhatIfResult
	require.NoError(t, json.Unmarshal(out.Data, &whatIf))
	require.Equal(t, 10, whatIf.ProjectedCredits)

	out = do(t, env, httptest.NewRequest(http.MethodGet, "/api/v1/students/me/progress", nil), token)
	require.Equal(t, 0, out.Code)
}

func TestAdminBulletinValidation(t *testing.T) {
	env := setupRouter(t)
	token := tokenFor(t, "registrar", jwt.RoleAdmin, "a1")

	out := do(t, env, multipartRequest(t, "/api/v1/admin/bulletins", map[string]string{"year": "2024", "category": "Major"}, "", nil), token)
	require.Equal(t, errcode.ErrInvalidFile, out.Code)

	out = do(t, env, multipartRequest(t, "/api/v1/admin/bulletins", map[string]string{"year": "soon", "category": "Major"}, "b.pdf", []byte("%PDF")), token)
	require.Equal(t, errcode.ErrInvalid, out.Code)

	out = do(t, env, multipartRequest(t, "/api/v1/admin/bulletins", map[string]string{"year": "2024", "category": "Major"}, "b.docx", []byte("x")), token)
	require.Equal(t, errcode.ErrInputRejected, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/bulletins/abc", nil), token)
	require.Equal(t, errcode.ErrInvalid, out.Code)

	out = do(t, env, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/documents/7", nil), token)
	require.Equal(t, errcode.ErrNotFound, out.Code)
}

func TestFileRouteRejectsTraversal(t *testing.T) {
	env := setupRouter(t)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/files/bulletins/missing.pdf", nil))
	require.Equal(t, http.StatusNotFound, resp.Code)
}
