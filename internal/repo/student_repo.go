package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/dbutil"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

const defaultCreditsRequired = 120

var studentFields = []string{
	"student_id", "first_name", "last_name", "email", "major", "enrollment_year",
	"enrollment_status", "current_gpa", "credits_earned", "degree_program_id", "password_hash",
}

type StudentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

func scanStudent(rows *sql.Rows, s *model.Student) error {
	var programID sql.NullInt64
	if err := rows.Scan(&s.StudentID, &s.FirstName, &s.LastName, &s.Email, &s.Major, &s.EnrollmentYear,
		&s.EnrollmentStatus, &s.CurrentGPA, &s.CreditsEarned, &programID, &s.PasswordHash); err != nil {
		return err
	}
	s.DegreeProgramID = programID.Int64
	return nil
}

func (r *StudentRepo) GetByID(ctx context.Context, studentID string) (*model.Student, error) {
	where := map[string]interface{}{"student_id": studentID}
	sqlStr, args, err := builder.BuildSelect("students", where, studentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var s model.Student
	if err := scanStudent(rows, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSummary loads the student joined with its degree program. Students
// without a program fall back to a 120 credit requirement.
func (r *StudentRepo) GetSummary(ctx context.Context, studentID string) (*model.StudentSummary, error) {
	const query = `
		SELECT s.student_id, s.first_name, s.last_name, s.email, s.major, s.enrollment_year,
			s.enrollment_status, s.current_gpa, s.credits_earned, COALESCE(s.degree_program_id, 0),
			COALESCE(dp.degree_name, ''), COALESCE(dp.degree_code, ''), COALESCE(dp.total_credits_required, $2)
		FROM students s
		LEFT JOIN degree_programs dp ON dp.id = s.degree_program_id
		WHERE s.student_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, studentID, defaultCreditsRequired)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var sum model.StudentSummary
	if err := rows.Scan(&sum.StudentID, &sum.FirstName, &sum.LastName, &sum.Email, &sum.Major,
		&sum.EnrollmentYear, &sum.EnrollmentStatus, &sum.CurrentGPA, &sum.CreditsEarned,
		&sum.DegreeProgramID, &sum.DegreeName, &sum.DegreeCode, &sum.CreditsRequired); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (r *StudentRepo) ListCourseHistory(ctx context.Context, studentID string) ([]model.CourseRecord, error) {
	const query = `
		SELECT c.course_code, c.course_name, c.credit_hours, h.grade, h.term, h.academic_year, h.status
		FROM student_course_history h
		JOIN courses c ON c.course_id = h.course_id
		WHERE h.student_id = $1
		ORDER BY h.academic_year, h.term, c.course_code
	`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	records := make([]model.CourseRecord, 0)
	for rows.Next() {
		var rec model.CourseRecord
		if err := rows.Scan(&rec.CourseCode, &rec.CourseName, &rec.CreditHours, &rec.Grade,
			&rec.Term, &rec.AcademicYear, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListCategoryProgress sums completed credits per requirement category of
// the student's degree program.
func (r *StudentRepo) ListCategoryProgress(ctx context.Context, studentID string, degreeProgramID int64) ([]model.CategoryProgress, error) {
	const query = `
		SELECT drc.category, drc.credits_required, COALESCE((
			SELECT SUM(c.credit_hours)
			FROM student_course_history h
			JOIN courses c ON c.course_id = h.course_id
			WHERE h.student_id = $1 AND h.status = 'Completed' AND c.category = drc.category
		), 0)
		FROM degree_requirement_categories drc
		WHERE drc.degree_program_id = $2
		ORDER BY drc.category
	`
	rows, err := r.db.QueryContext(ctx, query, studentID, degreeProgramID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make([]model.CategoryProgress, 0)
	for rows.Next() {
		var p model.CategoryProgress
		if err := rows.Scan(&p.Category, &p.CreditsRequired, &p.CreditsEarned); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Search matches an exact student id or a case-insensitive email fragment.
func (r *StudentRepo) Search(ctx context.Context, q string, limit int) ([]model.Student, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.Student{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT student_id, first_name, last_name, email, major, enrollment_year,
			enrollment_status, current_gpa, credits_earned, degree_program_id, password_hash
		FROM students
		WHERE student_id = $1 OR LOWER(email) LIKE $2
		ORDER BY student_id
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, q, "%"+strings.ToLower(q)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make([]model.Student, 0)
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
