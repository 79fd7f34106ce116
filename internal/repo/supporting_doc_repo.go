package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/dbutil"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

type SupportingDocRepo struct {
	db *sql.DB
}

func NewSupportingDocRepo(db *sql.DB) *SupportingDocRepo {
	return &SupportingDocRepo{db: db}
}

func (r *SupportingDocRepo) Create(ctx context.Context, doc *model.SupportingDocument) error {
	data := map[string]interface{}{
		"name":          doc.Name,
		"document_type": doc.DocumentType,
		"document_year": doc.DocumentYear,
		"course_code":   doc.CourseCode,
		"locator":       doc.Locator,
		"description":   doc.Description,
		"is_active":     doc.IsActive,
		"uploaded_by":   doc.UploadedBy,
		"ctime":         doc.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("supporting_documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	return r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&doc.ID)
}

func (r *SupportingDocRepo) List(ctx context.Context) ([]model.SupportingDocument, error) {
	const query = `
		SELECT id, name, document_type, document_year, course_code, locator, description, is_active, uploaded_by, ctime
		FROM supporting_documents
		ORDER BY ctime DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanDocuments(rows)
}

// ListActive returns the newest active documents. A non-empty course code
// keeps documents tagged with that course plus untagged ones.
func (r *SupportingDocRepo) ListActive(ctx context.Context, courseCode string, limit int) ([]model.SupportingDocument, error) {
	const query = `
		SELECT id, name, document_type, document_year, course_code, locator, description, is_active, uploaded_by, ctime
		FROM supporting_documents
		WHERE is_active = TRUE AND ($1 = '' OR course_code = $1 OR course_code = '')
		ORDER BY ctime DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, courseCode, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanDocuments(rows)
}

func (r *SupportingDocRepo) Deactivate(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildUpdate("supporting_documents", map[string]interface{}{"id": id}, map[string]interface{}{"is_active": false})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func scanDocuments(rows *sql.Rows) ([]model.SupportingDocument, error) {
	out := make([]model.SupportingDocument, 0)
	for rows.Next() {
		var d model.SupportingDocument
		if err := rows.Scan(&d.ID, &d.Name, &d.DocumentType, &d.DocumentYear, &d.CourseCode, &d.Locator,
			&d.Description, &d.IsActive, &d.UploadedBy, &d.Ctime); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
