package store

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func (r *Repositories) AddShortlist(ctx context.Context, pinID, volunteerID int64) (model.ShortlistEntry, error) {
	var e model.ShortlistEntry
	err := r.DB.QueryRowxContext(ctx,
		`WITH ins AS (
			INSERT INTO volunteer_shortlist(pin_id, volunteer_id, created_at)
			VALUES($1,$2,now()) RETURNING id, pin_id, volunteer_id, created_at
		 )
		 SELECT ins.id, ins.pin_id, ins.volunteer_id, u.username AS volunteer_name, ins.created_at
		 FROM ins JOIN users u ON u.id = ins.volunteer_id`,
		pinID, volunteerID).StructScan(&e)
	if err != nil {
		r.Log.Error("AddShortlist: insert failed", zap.Int64("pin", pinID), zap.Int64("volunteer", volunteerID), zap.Error(err))
		return model.ShortlistEntry{}, err
	}
	r.Log.Info("AddShortlist: success", zap.Int64("entry_id", e.ID))
	return e, nil
}

func (r *Repositories) ListShortlist(ctx context.Context, pinID int64) ([]model.ShortlistEntry, error) {
	entries := []model.ShortlistEntry{}
	err := r.DB.SelectContext(ctx, &entries,
		`SELECT s.id, s.pin_id, s.volunteer_id, u.username AS volunteer_name, s.created_at
		 FROM volunteer_shortlist s
		 JOIN users u ON u.id = s.volunteer_id
		 WHERE s.pin_id=$1 ORDER BY s.created_at DESC`, pinID)
	if err != nil {
		r.Log.Error("ListShortlist: query failed", zap.Int64("pin", pinID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (r *Repositories) DeleteShortlistEntry(ctx context.Context, pinID, entryID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM volunteer_shortlist WHERE id=$1 AND pin_id=$2`, entryID, pinID)
	if err != nil {
		r.Log.Error("DeleteShortlistEntry: delete failed", zap.Int64("entry_id", entryID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *Repositories) InShortlist(ctx context.Context, pinID, volunteerID int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM volunteer_shortlist WHERE pin_id=$1 AND volunteer_id=$2`, pinID, volunteerID)
}

func (r *Repositories) AddBlacklist(ctx context.Context, pinID, volunteerID int64, reason string) (model.BlacklistEntry, error) {
	var e model.BlacklistEntry
	err := r.DB.QueryRowxContext(ctx,
		`WITH ins AS (
			INSERT INTO volunteer_blacklist(pin_id, volunteer_id, reason, created_at)
			VALUES($1,$2,$3,now()) RETURNING id, pin_id, volunteer_id, reason, created_at
		 )
		 SELECT ins.id, ins.pin_id, ins.volunteer_id, u.username AS volunteer_name, ins.reason, ins.created_at
		 FROM ins JOIN users u ON u.id = ins.volunteer_id`,
		pinID, volunteerID, reason).StructScan(&e)
	if err != nil {
		r.Log.Error("AddBlacklist: insert failed", zap.Int64("pin", pinID), zap.Int64("volunteer", volunteerID), zap.Error(err))
		return model.BlacklistEntry{}, err
	}
	r.Log.Info("AddBlacklist: success", zap.Int64("entry_id", e.ID))
	return e, nil
}

func (r *Repositories) ListBlacklist(ctx context.Context, pinID int64) ([]model.BlacklistEntry, error) {
	entries := []model.BlacklistEntry{}
	err := r.DB.SelectContext(ctx, &entries,
		`SELECT b.id, b.pin_id, b.volunteer_id, u.username AS volunteer_name, b.reason, b.created_at
		 FROM volunteer_blacklist b
		 JOIN users u ON u.id = b.volunteer_id
		 WHERE b.pin_id=$1 ORDER BY b.created_at DESC`, pinID)
	if err != nil {
		r.Log.Error("ListBlacklist: query failed", zap.Int64("pin", pinID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (r *Repositories) DeleteBlacklistByVolunteer(ctx context.Context, pinID, volunteerID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM volunteer_blacklist WHERE pin_id=$1 AND volunteer_id=$2`, pinID, volunteerID)
	if err != nil {
		r.Log.Error("DeleteBlacklistByVolunteer: delete failed", zap.Int64("volunteer", volunteerID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *Repositories) InBlacklist(ctx context.Context, pinID, volunteerID int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM volunteer_blacklist WHERE pin_id=$1 AND volunteer_id=$2`, pinID, volunteerID)
}

// CreateReview inserts the review and refreshes the volunteer profile's
// aggregate rating in the same transaction.
func (r *Repositories) CreateReview(ctx context.Context, rv model.Review) (model.Review, error) {
	r.Log.Debug("CreateReview: start", zap.Int64("volunteer", rv.VolunteerID), zap.Int("rating", rv.Rating))

	tx, err := r.BeginTx(ctx)
	if err != nil {
		r.Log.Error("CreateReview: begin tx failed", zap.Error(err))
		return model.Review{}, err
	}
	defer r.rollback(tx, "CreateReview")

	var saved model.Review
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO volunteer_reviews(pin_id, volunteer_id, request_id, rating, comment, created_at)
		 VALUES($1,$2,$3,$4,$5,now())
		 RETURNING id, pin_id, volunteer_id, request_id, rating, comment, created_at`,
		rv.PinID, rv.VolunteerID, rv.RequestID, rv.Rating, rv.Comment).StructScan(&saved)
	if err != nil {
		r.Log.Error("CreateReview: insert failed", zap.Error(err))
		return model.Review{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_profiles p SET
			rating = agg.avg_rating,
			total_reviews = agg.cnt
		 FROM (SELECT AVG(rating)::float8 AS avg_rating, COUNT(*) AS cnt
		       FROM volunteer_reviews WHERE volunteer_id=$1) agg
		 WHERE p.user_id=$1`, rv.VolunteerID); err != nil {
		r.Log.Error("CreateReview: refresh profile failed", zap.Error(err))
		return model.Review{}, err
	}

	if err := tx.Commit(); err != nil {
		r.Log.Error("CreateReview: commit failed", zap.Error(err))
		return model.Review{}, err
	}
	r.Log.Info("CreateReview: success", zap.Int64("review_id", saved.ID))
	return saved, nil
}

func (r *Repositories) ListReviews(ctx context.Context, volunteerID int64) ([]model.Review, error) {
	reviews := []model.Review{}
	err := r.DB.SelectContext(ctx, &reviews,
		`SELECT rv.id, rv.pin_id, u.username AS pin_name, rv.volunteer_id, rv.request_id, rv.rating, rv.comment, rv.created_at
		 FROM volunteer_reviews rv
		 JOIN users u ON u.id = rv.pin_id
		 WHERE rv.volunteer_id=$1 ORDER BY rv.created_at DESC`, volunteerID)
	if err != nil {
		r.Log.Error("ListReviews: query failed", zap.Int64("volunteer", volunteerID), zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

func (r *Repositories) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	if err := r.DB.GetContext(ctx, &one, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
