package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/advisor/internal/model"
)

type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

func (r *PlanRepo) ListPlanned(ctx context.Context, studentID string) ([]model.PlannedCourse, error) {
	const query = `
		SELECT c.course_code, p.term, p.academic_year
		FROM planned_courses p
		JOIN courses c ON c.course_id = p.course_id
		WHERE p.student_id = $1
		ORDER BY p.academic_year, p.term, c.course_code
	`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make([]model.PlannedCourse, 0)
	for rows.Next() {
		var p model.PlannedCourse
		if err := rows.Scan(&p.CourseCode, &p.Term, &p.AcademicYear); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
