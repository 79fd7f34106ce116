package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/dbutil"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

var bulletinFields = []string{
	"id", "file_name", "locator", "category", "academic_year", "description",
	"pages", "courses", "is_active", "uploaded_by", "ctime",
}

type BulletinRepo struct {
	db *sql.DB
}

func NewBulletinRepo(db *sql.DB) *BulletinRepo {
	return &BulletinRepo{db: db}
}

func (r *BulletinRepo) Create(ctx context.Context, b *model.Bulletin) error {
	data := map[string]interface{}{
		"file_name":     b.FileName,
		"locator":       b.Locator,
		"category":      b.Category,
		"academic_year": b.AcademicYear,
		"description":   b.Description,
		"pages":         b.Pages,
		"courses":       b.Courses,
		"is_active":     b.IsActive,
		"uploaded_by":   b.UploadedBy,
		"ctime":         b.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("bulletins", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	return r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&b.ID)
}

func (r *BulletinRepo) List(ctx context.Context, activeOnly bool) ([]model.Bulletin, error) {
	where := map[string]interface{}{"_orderby": "ctime desc"}
	if activeOnly {
		where["is_active"] = true
	}
	return r.query(ctx, where)
}

// LatestActive returns the newest active bulletin of the category.
func (r *BulletinRepo) LatestActive(ctx context.Context, category string) (*model.Bulletin, error) {
	where := map[string]interface{}{
		"is_active": true,
		"category":  category,
		"_orderby":  "ctime desc",
		"_limit":    []uint{0, 1},
	}
	items, err := r.query(ctx, where)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &items[0], nil
}

func (r *BulletinRepo) Deactivate(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildUpdate("bulletins", map[string]interface{}{"id": id}, map[string]interface{}{"is_active": false})
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

func (r *BulletinRepo) query(ctx context.Context, where map[string]interface{}) ([]model.Bulletin, error) {
	sqlStr, args, err := builder.BuildSelect("bulletins", where, bulletinFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make([]model.Bulletin, 0)
	for rows.Next() {
		var b model.Bulletin
		if err := rows.Scan(&b.ID, &b.FileName, &b.Locator, &b.Category, &b.AcademicYear, &b.Description,
			&b.Pages, &b.Courses, &b.IsActive, &b.UploadedBy, &b.Ctime); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
