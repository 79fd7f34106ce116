package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/pkg/jwt"
	"github.com/xxxsen/advisor/internal/pkg/password"
	"github.com/xxxsen/advisor/internal/session"
)

type LoginResult struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type AuthService struct {
	students  StudentStore
	admins    AdminStore
	sessions  session.Store
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(students StudentStore, admins AdminStore, sessions session.Store, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{students: students, admins: admins, sessions: sessions, jwtSecret: secret, jwtTTL: ttl}
}

func isStudentLogin(login string) bool {
	if login == "" {
		return false
	}
	for _, r := range login {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Login treats an all-digit login as a student id and anything else as an
// admin username. Every session starts with a fresh session id.
func (s *AuthService) Login(ctx context.Context, login, plainPassword string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || plainPassword == "" {
		return nil, appErr.Reject("Login and password are required.")
	}
	var (
		res  *LoginResult
		hash string
	)
	if isStudentLogin(login) {
		student, err := s.students.GetByID(ctx, login)
		if err != nil {
			return nil, s.loginFailure(ctx, login, err)
		}
		hash = student.PasswordHash
		res = &LoginResult{Role: jwt.RoleStudent, UserID: student.StudentID, Name: student.FullName()}
	} else {
		admin, err := s.admins.GetByUsername(ctx, login)
		if err != nil {
			return nil, s.loginFailure(ctx, login, err)
		}
		hash = admin.PasswordHash
		res = &LoginResult{Role: jwt.RoleAdmin, UserID: admin.Username, Name: admin.FullName}
	}
	if hash == "" || password.Compare(hash, plainPassword) != nil {
		return nil, appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(res.UserID, res.Role, newSessionID(), s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, err
	}
	res.Token = token
	return res, nil
}

func (s *AuthService) loginFailure(ctx context.Context, login string, err error) error {
	if appErr.IsNotFound(err) {
		return appErr.ErrUnauthorized
	}
	logutil.GetLogger(ctx).Error("login lookup failed", zap.String("login", login), zap.Error(err))
	return fmt.Errorf("%w: %w", appErr.ErrUpstream, err)
}

// Logout drops everything cached for the session.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, sid)
}
