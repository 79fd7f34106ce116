package service

import (
	"context"

	"github.com/xxxsen/advisor/internal/ai"
	"github.com/xxxsen/advisor/internal/model"
)

// The interfaces below are satisfied by the postgres repositories in
// internal/repo and by in-memory fakes in tests.

type StudentStore interface {
	GetByID(ctx context.Context, studentID string) (*model.Student, error)
	GetSummary(ctx context.Context, studentID string) (*model.StudentSummary, error)
	ListCourseHistory(ctx context.Context, studentID string) ([]model.CourseRecord, error)
	ListCategoryProgress(ctx context.Context, studentID string, degreeProgramID int64) ([]model.CategoryProgress, error)
	Search(ctx context.Context, q string, limit int) ([]model.Student, error)
}

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
}

type CourseStore interface {
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	ListPrerequisites(ctx context.Context, courseID int64) ([]model.Course, error)
}

type PlanStore interface {
	ListPlanned(ctx context.Context, studentID string) ([]model.PlannedCourse, error)
}

type BulletinStore interface {
	Create(ctx context.Context, b *model.Bulletin) error
	List(ctx context.Context, activeOnly bool) ([]model.Bulletin, error)
	LatestActive(ctx context.Context, category string) (*model.Bulletin, error)
	Deactivate(ctx context.Context, id int64) error
}

type DocumentStore interface {
	Create(ctx context.Context, doc *model.SupportingDocument) error
	List(ctx context.Context) ([]model.SupportingDocument, error)
	ListActive(ctx context.Context, courseCode string, limit int) ([]model.SupportingDocument, error)
	Deactivate(ctx context.Context, id int64) error
}

// Completer is the text completion service.
type Completer interface {
	Generate(ctx context.Context, prompt string, history []ai.Turn) (string, error)
}
