package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

const offerColumns = `id, request_id, volunteer_id, status, message, created_at`

// UpsertOffer creates an offer or, when the volunteer already offered on the
// same request, refreshes its status and message.
func (r *Repositories) UpsertOffer(ctx context.Context, o model.Offer) (model.Offer, error) {
	r.Log.Debug("UpsertOffer: start", zap.Int64("request_id", o.RequestID), zap.Int64("volunteer", o.VolunteerID))

	var saved model.Offer
	err := r.DB.QueryRowxContext(ctx,
		`INSERT INTO volunteer_offers(request_id, volunteer_id, status, message, created_at)
		 VALUES($1,$2,$3,$4,now())
		 ON CONFLICT (request_id, volunteer_id)
		 DO UPDATE SET status=EXCLUDED.status, message=EXCLUDED.message
		 RETURNING `+offerColumns,
		o.RequestID, o.VolunteerID, o.Status, o.Message).StructScan(&saved)
	if err != nil {
		r.Log.Error("UpsertOffer: upsert failed", zap.Error(err))
		return model.Offer{}, err
	}
	r.Log.Info("UpsertOffer: success", zap.Int64("offer_id", saved.ID))
	return saved, nil
}

func (r *Repositories) GetOffer(ctx context.Context, id int64) (model.Offer, error) {
	var o model.Offer
	if err := r.DB.GetContext(ctx, &o, `SELECT `+offerColumns+` FROM volunteer_offers WHERE id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Offer{}, model.ErrNotFound
		}
		r.Log.Error("GetOffer: query failed", zap.Int64("offer_id", id), zap.Error(err))
		return model.Offer{}, err
	}
	return o, nil
}

func (r *Repositories) SetOfferStatus(ctx context.Context, id int64, st model.OfferStatus) (model.Offer, error) {
	var o model.Offer
	err := r.DB.QueryRowxContext(ctx,
		`UPDATE volunteer_offers SET status=$2 WHERE id=$1 RETURNING `+offerColumns,
		id, st).StructScan(&o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Offer{}, model.ErrNotFound
		}
		r.Log.Error("SetOfferStatus: update failed", zap.Int64("offer_id", id), zap.Error(err))
		return model.Offer{}, err
	}
	r.Log.Info("SetOfferStatus: success", zap.Int64("offer_id", id), zap.String("status", string(st)))
	return o, nil
}

func (r *Repositories) ListOffersByVolunteer(ctx context.Context, volunteerID int64) ([]model.Offer, error) {
	offers := []model.Offer{}
	err := r.DB.SelectContext(ctx, &offers,
		`SELECT `+offerColumns+` FROM volunteer_offers WHERE volunteer_id=$1 ORDER BY created_at DESC`, volunteerID)
	if err != nil {
		r.Log.Error("ListOffersByVolunteer: query failed", zap.Int64("volunteer", volunteerID), zap.Error(err))
		return nil, err
	}
	return offers, nil
}

func (r *Repositories) ListAcceptedTasks(ctx context.Context, volunteerID int64) ([]model.AcceptedTask, error) {
	tasks := []model.AcceptedTask{}
	err := r.DB.SelectContext(ctx, &tasks,
		`SELECT o.id, hr.id AS request_id, hr.title, hr.description, hr.location, hr.urgency, hr.status, o.created_at
		 FROM volunteer_offers o
		 JOIN help_requests hr ON hr.id = o.request_id
		 WHERE o.volunteer_id=$1 AND o.status='accepted'
		 ORDER BY o.created_at DESC`, volunteerID)
	if err != nil {
		r.Log.Error("ListAcceptedTasks: query failed", zap.Int64("volunteer", volunteerID), zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

// HasAcceptedOffer reports whether the volunteer holds a live offer on the
// request. Withdrawn offers do not count.
func (r *Repositories) HasAcceptedOffer(ctx context.Context, requestID, volunteerID int64) (bool, error) {
	var one int
	err := r.DB.GetContext(ctx, &one,
		`SELECT 1 FROM volunteer_offers WHERE request_id=$1 AND volunteer_id=$2 AND status='accepted'`, requestID, volunteerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CompleteTask marks the offer's request completed and credits the volunteer's
// profile, atomically.
func (r *Repositories) CompleteTask(ctx context.Context, o model.Offer, at time.Time) error {
	r.Log.Debug("CompleteTask: start", zap.Int64("offer_id", o.ID), zap.Int64("request_id", o.RequestID))

	tx, err := r.BeginTx(ctx)
	if err != nil {
		r.Log.Error("CompleteTask: begin tx failed", zap.Error(err))
		return err
	}
	defer r.rollback(tx, "CompleteTask")

	res, err := tx.ExecContext(ctx,
		`UPDATE help_requests SET status='completed', completed_at=$2, updated_at=now()
		 WHERE id=$1 AND status <> 'completed'`,
		o.RequestID, at)
	if err != nil {
		r.Log.Error("CompleteTask: update request failed", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_profiles SET completed_tasks=completed_tasks+1 WHERE user_id=$1`,
		o.VolunteerID); err != nil {
		r.Log.Error("CompleteTask: credit profile failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		r.Log.Error("CompleteTask: commit failed", zap.Error(err))
		return err
	}
	r.Log.Info("CompleteTask: success", zap.Int64("offer_id", o.ID), zap.Int64("request_id", o.RequestID))
	return nil
}
