package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/xxxsen/advisor/internal/model"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
	"github.com/xxxsen/advisor/internal/studentctx"
)

// gradePoints maps letter grades to the 4.0 scale. Grades missing from the
// table (W, I, P and blanks) carry no quality points.
var gradePoints = map[string]float64{
	"A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0, "D-": 0.7,
	"F": 0,
}

// grades that do not satisfy a prerequisite even when the course is completed
var failingGrades = map[string]struct{}{"F": {}, "W": {}, "I": {}}

func GradePoints(grade string) (float64, bool) {
	p, ok := gradePoints[strings.ToUpper(strings.TrimSpace(grade))]
	return p, ok
}

// AdvisingService answers the structured advising questions: prerequisites,
// planning conflicts and GPA arithmetic.
type AdvisingService struct {
	students StudentStore
	courses  CourseStore
	plans    PlanStore
}

func NewAdvisingService(students StudentStore, courses CourseStore, plans PlanStore) *AdvisingService {
	return &AdvisingService{students: students, courses: courses, plans: plans}
}

func (s *AdvisingService) history(ctx context.Context, studentID string) ([]model.CourseRecord, error) {
	records, err := s.students.ListCourseHistory(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: load course history: %w", appErr.ErrUpstream, err)
	}
	return records, nil
}

func (s *AdvisingService) CheckPrerequisites(ctx context.Context, studentID, courseCode string) (*model.PrerequisiteCheckResult, error) {
	code := model.NormalizeCode(courseCode)
	if code == "" {
		return nil, appErr.Reject("A course code is required.")
	}
	res := &model.PrerequisiteCheckResult{CourseCode: code, Prerequisites: []string{}, Missing: []string{}}
	course, err := s.courses.GetByCode(ctx, code)
	if err != nil {
		if appErr.IsNotFound(err) {
			res.Message = fmt.Sprintf("Course %s not found.", code)
			return res, nil
		}
		return nil, fmt.Errorf("%w: load course: %w", appErr.ErrUpstream, err)
	}
	prereqs, err := s.courses.ListPrerequisites(ctx, course.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load prerequisites: %w", appErr.ErrUpstream, err)
	}
	if len(prereqs) == 0 {
		res.Satisfied = true
		res.Message = fmt.Sprintf("No prerequisites required for %s.", code)
		return res, nil
	}
	records, err := s.history(ctx, studentID)
	if err != nil {
		return nil, err
	}
	passed := make(map[string]struct{})
	for _, r := range records {
		if r.Status != studentctx.StatusCompleted {
			continue
		}
		if _, bad := failingGrades[strings.ToUpper(strings.TrimSpace(r.Grade))]; bad {
			continue
		}
		passed[model.NormalizeCode(r.CourseCode)] = struct{}{}
	}
	for _, p := range prereqs {
		res.Prerequisites = append(res.Prerequisites, p.CourseCode)
		if _, ok := passed[model.NormalizeCode(p.CourseCode)]; !ok {
			res.Missing = append(res.Missing, p.CourseCode+" - "+p.CourseName)
		}
	}
	if len(res.Missing) > 0 {
		res.Message = fmt.Sprintf("Cannot enroll in %s. Missing prerequisites: %s", code, strings.Join(res.Missing, ", "))
		return res, nil
	}
	res.Satisfied = true
	res.Message = fmt.Sprintf("✓ All prerequisites met for %s.", code)
	return res, nil
}

// CheckConflicts reports whether adding a course to a term would duplicate
// completed or planned work, and warns when the course is not usually
// offered in that term.
func (s *AdvisingService) CheckConflicts(ctx context.Context, studentID, courseCode, term string, year int) (*model.ConflictResult, error) {
	code := model.NormalizeCode(courseCode)
	term = strings.TrimSpace(term)
	if code == "" || term == "" || year <= 0 {
		return nil, appErr.Reject("Course, term and year are required.")
	}
	res := &model.ConflictResult{CourseCode: code, Conflicts: []string{}, Warnings: []string{}}
	records, err := s.history(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Status == studentctx.StatusCompleted && model.NormalizeCode(r.CourseCode) == code {
			res.Conflicts = append(res.Conflicts,
				fmt.Sprintf("Already completed %s with grade %s in %s %d", code, r.Grade, r.Term, r.AcademicYear))
			break
		}
	}
	planned, err := s.plans.ListPlanned(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: load planned courses: %w", appErr.ErrUpstream, err)
	}
	for _, p := range planned {
		if model.NormalizeCode(p.CourseCode) == code {
			res.Conflicts = append(res.Conflicts, fmt.Sprintf("Already planned for %s %d", p.Term, p.AcademicYear))
			break
		}
	}
	course, err := s.courses.GetByCode(ctx, code)
	switch {
	case err == nil:
		offered := strings.TrimSpace(course.TypicalTerms)
		if offered != "" && !strings.Contains(strings.ToLower(offered), strings.ToLower(term)) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s is typically offered in %s, not %s", code, offered, term))
		}
	case !appErr.IsNotFound(err):
		return nil, fmt.Errorf("%w: load course: %w", appErr.ErrUpstream, err)
	}

	res.HasConflict = len(res.Conflicts) > 0
	switch {
	case res.HasConflict:
		res.Message = fmt.Sprintf("Cannot add %s:\n%s", code, strings.Join(res.Conflicts, "\n"))
	case len(res.Warnings) > 0:
		res.Message = fmt.Sprintf("Warning for %s:\n%s", code, strings.Join(res.Warnings, "\n"))
	default:
		res.Message = fmt.Sprintf("%s can be added to %s %d.", code, term, year)
	}
	return res, nil
}

// CurrentGPA recomputes the GPA from completed, graded history.
func (s *AdvisingService) CurrentGPA(ctx context.Context, studentID string) (*model.GpaSummary, error) {
	records, err := s.history(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return summarizeGPA(records), nil
}

func summarizeGPA(records []model.CourseRecord) *model.GpaSummary {
	sum := &model.GpaSummary{}
	for _, r := range records {
		if r.Status != studentctx.StatusCompleted {
			continue
		}
		p, ok := GradePoints(r.Grade)
		if !ok {
			continue
		}
		sum.QualityPoints += p * float64(r.CreditHours)
		sum.GradedCredits += r.CreditHours
	}
	if sum.GradedCredits > 0 {
		sum.GPA = round2(sum.QualityPoints / float64(sum.GradedCredits))
	}
	return sum
}

// WhatIf projects the GPA after the given hypothetical grades. Courses with
// ungraded letters are ignored.
func (s *AdvisingService) WhatIf(ctx context.Context, studentID string, courses []model.HypotheticalCourse) (*model.WhatIfResult, error) {
	current, err := s.CurrentGPA(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return projectGPA(current, courses), nil
}

func projectGPA(current *model.GpaSummary, courses []model.HypotheticalCourse) *model.WhatIfResult {
	points := current.QualityPoints
	credits := current.GradedCredits
	for _, c := range courses {
		p, ok := GradePoints(c.Grade)
		if !ok || c.CreditHours <= 0 {
			continue
		}
		points += p * float64(c.CreditHours)
		credits += c.CreditHours
	}
	res := &model.WhatIfResult{ProjectedCredits: credits}
	if credits > 0 {
		res.ProjectedGPA = round2(points / float64(credits))
	}
	res.Message = fmt.Sprintf("Current GPA: %s (%d credits) → Projected GPA: %s (%d credits)",
		studentctx.FormatGPA(current.GPA), current.GradedCredits, studentctx.FormatGPA(res.ProjectedGPA), credits)
	return res
}

// GPANeeded computes the average needed over the remaining credits to reach
// the target GPA.
func (s *AdvisingService) GPANeeded(ctx context.Context, studentID string, target float64, remaining int) (*model.GpaNeeded, error) {
	if target <= 0 || target > 4.0 {
		return nil, appErr.Reject("Target GPA must be between 0 and 4.0.")
	}
	if remaining <= 0 {
		return nil, appErr.Reject("No remaining credits to calculate.")
	}
	current, err := s.CurrentGPA(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return neededGPA(current, target, remaining), nil
}

func neededGPA(current *model.GpaSummary, target float64, remaining int) *model.GpaNeeded {
	totalCredits := current.GradedCredits + remaining
	needed := (target*float64(totalCredits) - current.QualityPoints) / float64(remaining)
	res := &model.GpaNeeded{
		CurrentGPA:       current.GPA,
		TargetGPA:        target,
		RemainingCredits: remaining,
		RequiredGPA:      round2(needed),
	}
	targetText := studentctx.FormatGPA(target)
	switch {
	case needed > 4.0:
		res.Message = fmt.Sprintf("Target GPA of %s is not achievable even with perfect 4.0 in remaining %d credits.", targetText, remaining)
	case needed < 0:
		res.Achievable = true
		res.RequiredGPA = 0
		res.Message = fmt.Sprintf("You've already exceeded the target GPA of %s! Current GPA: %s", targetText, studentctx.FormatGPA(current.GPA))
	default:
		res.Achievable = true
		res.Message = fmt.Sprintf("To reach %s GPA, you need an average of %s in your next %d credits.",
			targetText, studentctx.FormatGPA(res.RequiredGPA), remaining)
	}
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
