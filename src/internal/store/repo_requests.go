package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

const requestColumns = `hr.id, hr.requester_id, hr.title, hr.description, hr.category_id, c.name AS category, hr.location,
	hr.urgency, hr.status, hr.photo_url, hr.view_count, hr.created_at, hr.updated_at, hr.completed_at`

const requestFrom = ` FROM help_requests hr LEFT JOIN categories c ON c.id = hr.category_id `

func (r *Repositories) CreateRequest(ctx context.Context, req model.HelpRequest) (model.HelpRequest, error) {
	r.Log.Debug("CreateRequest: start", zap.Int64("requester", req.RequesterID), zap.String("title", req.Title))

	var id int64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO help_requests(requester_id, title, description, category_id, location, urgency, status, photo_url, view_count, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,'pending',$7,0,now(),now()) RETURNING id`,
		req.RequesterID, req.Title, req.Description, req.CategoryID, req.Location, req.Urgency, req.PhotoURL).Scan(&id)
	if err != nil {
		r.Log.Error("CreateRequest: insert failed", zap.Error(err))
		return model.HelpRequest{}, err
	}
	r.Log.Info("CreateRequest: success", zap.Int64("request_id", id))
	return r.GetRequest(ctx, id)
}

func (r *Repositories) GetRequest(ctx context.Context, id int64) (model.HelpRequest, error) {
	var req model.HelpRequest
	if err := r.DB.GetContext(ctx, &req, `SELECT `+requestColumns+requestFrom+`WHERE hr.id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.HelpRequest{}, model.ErrNotFound
		}
		r.Log.Error("GetRequest: query failed", zap.Int64("request_id", id), zap.Error(err))
		return model.HelpRequest{}, err
	}
	return req, nil
}

// ViewRequest bumps the view counter and returns the fresh row.
func (r *Repositories) ViewRequest(ctx context.Context, id int64) (model.HelpRequest, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE help_requests SET view_count=view_count+1 WHERE id=$1`, id)
	if err != nil {
		r.Log.Error("ViewRequest: bump failed", zap.Int64("request_id", id), zap.Error(err))
		return model.HelpRequest{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.HelpRequest{}, model.ErrNotFound
	}
	return r.GetRequest(ctx, id)
}

func (r *Repositories) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.HelpRequest, error) {
	q := `SELECT ` + requestColumns + requestFrom + `WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND hr.status=$%d", len(args))
	}
	if f.Urgency != "" {
		args = append(args, f.Urgency)
		q += fmt.Sprintf(" AND hr.urgency=$%d", len(args))
	}
	if f.Location != "" {
		args = append(args, "%"+f.Location+"%")
		q += fmt.Sprintf(" AND hr.location ILIKE $%d", len(args))
	}
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		q += fmt.Sprintf(" AND hr.category_id=$%d", len(args))
	}
	q += ` ORDER BY hr.created_at DESC`

	reqs := []model.HelpRequest{}
	if err := r.DB.SelectContext(ctx, &reqs, q, args...); err != nil {
		r.Log.Error("ListRequests: query failed", zap.Error(err))
		return nil, err
	}
	r.Log.Debug("ListRequests: success", zap.Int("count", len(reqs)))
	return reqs, nil
}

func (r *Repositories) ListRequestsByRequester(ctx context.Context, userID int64) ([]model.HelpRequest, error) {
	reqs := []model.HelpRequest{}
	err := r.DB.SelectContext(ctx, &reqs,
		`SELECT `+requestColumns+requestFrom+`WHERE hr.requester_id=$1 ORDER BY hr.created_at DESC`, userID)
	if err != nil {
		r.Log.Error("ListRequestsByRequester: query failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return reqs, nil
}

func (r *Repositories) UpdateRequest(ctx context.Context, req model.HelpRequest) (model.HelpRequest, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE help_requests
		 SET title=$2, description=$3, category_id=$4, location=$5, urgency=$6, status=$7, completed_at=$8, updated_at=now()
		 WHERE id=$1`,
		req.ID, req.Title, req.Description, req.CategoryID, req.Location, req.Urgency, req.Status, req.CompletedAt)
	if err != nil {
		r.Log.Error("UpdateRequest: update failed", zap.Int64("request_id", req.ID), zap.Error(err))
		return model.HelpRequest{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.HelpRequest{}, model.ErrNotFound
	}
	r.Log.Info("UpdateRequest: success", zap.Int64("request_id", req.ID), zap.String("status", string(req.Status)))
	return r.GetRequest(ctx, req.ID)
}

func (r *Repositories) DeleteRequest(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM help_requests WHERE id=$1`, id)
	if err != nil {
		r.Log.Error("DeleteRequest: delete failed", zap.Int64("request_id", id), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	r.Log.Info("DeleteRequest: success", zap.Int64("request_id", id))
	return nil
}
