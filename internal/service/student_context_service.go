package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/advisor/internal/model"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

type StudentContextService struct {
	students StudentStore
}

func NewStudentContextService(students StudentStore) *StudentContextService {
	return &StudentContextService{students: students}
}

// Build assembles the snapshot of one student. A missing student yields
// ErrNotFound, any query failure is wrapped with ErrUpstream.
func (s *StudentContextService) Build(ctx context.Context, studentID string) (*model.StudentSnapshot, error) {
	sum, err := s.students.GetSummary(ctx, studentID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load student summary: %w", appErr.ErrUpstream, err)
	}
	courses, err := s.students.ListCourseHistory(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: load course history: %w", appErr.ErrUpstream, err)
	}
	var progress []model.CategoryProgress
	if sum.DegreeProgramID != 0 {
		progress, err = s.students.ListCategoryProgress(ctx, studentID, sum.DegreeProgramID)
		if err != nil {
			return nil, fmt.Errorf("%w: load category progress: %w", appErr.ErrUpstream, err)
		}
	}
	major := sum.Major
	if major == "" {
		major = "Undeclared"
	}
	return &model.StudentSnapshot{
		StudentID:        sum.StudentID,
		Name:             sum.FullName(),
		Email:            sum.Email,
		Major:            major,
		EnrollmentYear:   sum.EnrollmentYear,
		EnrollmentStatus: sum.EnrollmentStatus,
		GPA:              sum.CurrentGPA,
		CreditsEarned:    sum.CreditsEarned,
		CreditsRequired:  sum.CreditsRequired,
		DegreeCode:       sum.DegreeCode,
		DegreeName:       sum.DegreeName,
		Courses:          courses,
		CoreProgress:     progress,
	}, nil
}
