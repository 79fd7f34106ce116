package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/dbutil"
	appErr "github.com/xxxsen/advisor/internal/pkg/errors"
)

type AdminRepo struct {
	db *sql.DB
}

func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	where := map[string]interface{}{"username": username}
	sqlStr, args, err := builder.BuildSelect("admins", where, []string{"admin_id", "username", "full_name", "password_hash"})
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
	var admin model.Admin
	if err := rows.Scan(&admin.AdminID, &admin.Username, &admin.FullName, &admin.PasswordHash); err != nil {
		return nil, err
	}
	return &admin, nil
}
