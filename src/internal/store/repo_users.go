package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

const userColumns = `id, email, username, password_hash, role, is_active, reset_token, reset_token_expiry, created_at, updated_at`

func (r *Repositories) CreateUser(ctx context.Context, u model.User, p model.UserProfile) (model.User, error) {
	r.Log.Debug("CreateUser: start", zap.String("email", u.Email))

	tx, err := r.BeginTx(ctx)
	if err != nil {
		r.Log.Error("CreateUser: begin tx failed", zap.Error(err))
		return model.User{}, err
	}
	defer r.rollback(tx, "CreateUser")

	var created model.User
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO users(email, username, password_hash, role, is_active, created_at, updated_at)
		 VALUES($1,$2,$3,$4,true,now(),now())
		 RETURNING `+userColumns,
		u.Email, u.Username, u.PasswordHash, u.Role).StructScan(&created)
	if err != nil {
		r.Log.Error("CreateUser: insert user failed", zap.Error(err))
		return model.User{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_profiles(user_id, full_name, company_name) VALUES($1,$2,$3)`,
		created.ID, p.FullName, p.CompanyName); err != nil {
		r.Log.Error("CreateUser: insert profile failed", zap.Error(err))
		return model.User{}, err
	}

	if err := tx.Commit(); err != nil {
		r.Log.Error("CreateUser: commit failed", zap.Error(err))
		return model.User{}, err
	}
	r.Log.Info("CreateUser: success", zap.Int64("user_id", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

func (r *Repositories) getUserWhere(ctx context.Context, clause string, arg any) (model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+clause, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		r.Log.Error("getUserWhere: query failed", zap.String("clause", clause), zap.Error(err))
		return model.User{}, err
	}
	return u, nil
}

func (r *Repositories) GetUser(ctx context.Context, id int64) (model.User, error) {
	return r.getUserWhere(ctx, `id=$1`, id)
}

func (r *Repositories) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUserWhere(ctx, `email=$1`, email)
}

func (r *Repositories) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getUserWhere(ctx, `username=$1`, username)
}

func (r *Repositories) GetUserByResetToken(ctx context.Context, token string) (model.User, error) {
	return r.getUserWhere(ctx, `reset_token=$1`, token)
}

func (r *Repositories) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		r.Log.Error("ListUsers: query failed", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (r *Repositories) UpdateUserFields(ctx context.Context, id int64, email, username *string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowxContext(ctx,
		`UPDATE users SET email=COALESCE($2, email), username=COALESCE($3, username), updated_at=now()
		 WHERE id=$1 RETURNING `+userColumns,
		id, email, username).StructScan(&u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		r.Log.Error("UpdateUserFields: update failed", zap.Int64("user_id", id), zap.Error(err))
		return model.User{}, err
	}
	return u, nil
}

func (r *Repositories) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		r.Log.Error("DeleteUser: delete failed", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	r.Log.Info("DeleteUser: success", zap.Int64("user_id", id))
	return nil
}

func (r *Repositories) AssignRole(ctx context.Context, id int64, role model.Role) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowxContext(ctx,
		`UPDATE users SET role=$2, updated_at=now() WHERE id=$1 RETURNING `+userColumns,
		id, role).StructScan(&u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		r.Log.Error("AssignRole: update failed", zap.Int64("user_id", id), zap.Error(err))
		return model.User{}, err
	}
	r.Log.Info("AssignRole: success", zap.Int64("user_id", id), zap.String("role", string(role)))
	return u, nil
}

func (r *Repositories) SetUserActive(ctx context.Context, id int64, active bool) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowxContext(ctx,
		`UPDATE users SET is_active=$2, updated_at=now() WHERE id=$1 RETURNING `+userColumns,
		id, active).StructScan(&u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		r.Log.Error("SetUserActive: update failed", zap.Int64("user_id", id), zap.Error(err))
		return model.User{}, err
	}
	return u, nil
}

func (r *Repositories) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET reset_token=$2, reset_token_expiry=$3, updated_at=now() WHERE id=$1`,
		id, token, expiry)
	if err != nil {
		r.Log.Error("SetResetToken: update failed", zap.Int64("user_id", id), zap.Error(err))
	}
	return err
}

// UpdatePassword stores a new hash and burns any outstanding reset token.
func (r *Repositories) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=$2, reset_token=NULL, reset_token_expiry=NULL, updated_at=now() WHERE id=$1`,
		id, hash)
	if err != nil {
		r.Log.Error("UpdatePassword: update failed", zap.Int64("user_id", id), zap.Error(err))
	}
	return err
}

func (r *Repositories) GetProfile(ctx context.Context, userID int64) (model.UserProfile, error) {
	var p model.UserProfile
	err := r.DB.GetContext(ctx, &p,
		`SELECT id, user_id, full_name, company_name, rating, total_reviews, completed_tasks
		 FROM user_profiles WHERE user_id=$1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserProfile{}, model.ErrNotFound
		}
		r.Log.Error("GetProfile: query failed", zap.Int64("user_id", userID), zap.Error(err))
		return model.UserProfile{}, err
	}
	return p, nil
}
