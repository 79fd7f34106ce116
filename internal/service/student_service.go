package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/advisor/internal/model"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

type StudentService struct {
	students  StudentStore
	snapshots *StudentContextService
}

func NewStudentService(students StudentStore, snapshots *StudentContextService) *StudentService {
	return &StudentService{students: students, snapshots: snapshots}
}

// Progress returns the structured snapshot shown on the progress view.
func (s *StudentService) Progress(ctx context.Context, studentID string) (*model.StudentSnapshot, error) {
	return s.snapshots.Build(ctx, studentID)
}

func (s *StudentService) Search(ctx context.Context, q string) ([]model.Student, error) {
	out, err := s.students.Search(ctx, q, 50)
	if err != nil {
		return nil, fmt.Errorf("%w: search students: %w", appErr.ErrUpstream, err)
	}
	return out, nil
}
