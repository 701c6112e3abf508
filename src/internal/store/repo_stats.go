package store

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func (r *Repositories) GetStats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.DB.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM users)                                        AS total_users,
			(SELECT COUNT(*) FROM users WHERE is_active)                        AS active_users,
			(SELECT COUNT(*) FROM help_requests)                                AS total_requests,
			(SELECT COUNT(*) FROM help_requests WHERE status = 'completed')     AS completed_requests
	`)
	if err != nil {
		r.Log.Error("GetStats: query failed", zap.Error(err))
		return model.Stats{}, err
	}
	r.Log.Debug("GetStats: success", zap.Int("total_users", s.TotalUsers))
	return s, nil
}

func (r *Repositories) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats := []model.Category{}
	err := r.DB.SelectContext(ctx, &cats,
		`SELECT id, name, description, is_active FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		r.Log.Error("ListCategories: query failed", zap.Error(err))
		return nil, err
	}
	return cats, nil
}

// CategoryExists only counts active categories; retired ones cannot be
// attached to new requests.
func (r *Repositories) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.GetContext(ctx, &one, `SELECT 1 FROM categories WHERE id=$1 AND is_active`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		r.Log.Error("CategoryExists: query failed", zap.Int64("category_id", id), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *Repositories) CreateCategory(ctx context.Context, name, description string) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowxContext(ctx,
		`INSERT INTO categories(name, description, is_active, created_at)
		 VALUES($1,$2,true,now()) RETURNING id, name, description, is_active`,
		name, description).StructScan(&c)
	if err != nil {
		r.Log.Error("CreateCategory: insert failed", zap.String("name", name), zap.Error(err))
		return model.Category{}, err
	}
	r.Log.Info("CreateCategory: success", zap.Int64("category_id", c.ID))
	return c, nil
}
