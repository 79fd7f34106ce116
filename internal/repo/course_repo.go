package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/dbutil"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

var courseFields = []string{"course_id", "course_code", "course_name", "credit_hours", "typical_terms"}

type CourseRepo struct {
	db *sql.DB
}

func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

func scanCourses(rows *sql.Rows) ([]model.Course, error) {
	out := make([]model.Course, 0)
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.CourseID, &c.CourseCode, &c.CourseName, &c.CreditHours, &c.TypicalTerms); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CourseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	where := map[string]interface{}{"course_code": code}
	sqlStr, args, err := builder.BuildSelect("courses", where, courseFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	courses, err := scanCourses(rows)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &courses[0], nil
}

func (r *CourseRepo) ListByCodes(ctx context.Context, codes []string) ([]model.Course, error) {
	if len(codes) == 0 {
		return []model.Course{}, nil
	}
	query, args, err := dbutil.In(`
		SELECT course_id, course_code, course_name, credit_hours, typical_terms
		FROM courses
		WHERE course_code IN (?)
		ORDER BY course_code
	`, codes)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanCourses(rows)
}

func (r *CourseRepo) ListPrerequisites(ctx context.Context, courseID int64) ([]model.Course, error) {
	const query = `
		SELECT c.course_id, c.course_code, c.course_name, c.credit_hours, c.typical_terms
		FROM course_prerequisites p
		JOIN courses c ON c.course_id = p.prerequisite_course_id
		WHERE p.course_id = $1
		ORDER BY c.course_code
	`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanCourses(rows)
}
