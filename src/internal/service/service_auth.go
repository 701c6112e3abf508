package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/auth"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

// Session is an authenticated session: a bearer token plus the user it
// belongs to.
type Session struct {
	Token string     `json:"access_token"`
	User  model.User `json:"user"`
}

type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	Role        model.Role
	FullName    string
	CompanyName string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return Session{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "email, username and password required"}
	}
	if in.Role == "" {
		in.Role = model.RolePIN
	}
	if !model.ValidRole(in.Role) {
		return Session{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown role"}
	}

	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return Session{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "email already registered"}
	} else if !errors.Is(err, model.ErrNotFound) {
		return Session{}, err
	}
	if _, err := s.repo.GetUserByUsername(ctx, in.Username); err == nil {
		return Session{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "username already taken"}
	} else if !errors.Is(err, model.ErrNotFound) {
		return Session{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, err
	}

	user, err := s.repo.CreateUser(ctx,
		model.User{Email: in.Email, Username: in.Username, PasswordHash: hash, Role: in.Role},
		model.UserProfile{FullName: in.FullName, CompanyName: in.CompanyName})
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return Session{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Session{}, apiErrors.APIError{Code: apiErrors.Unauthorized, Message: "invalid credentials"}
		}
		return Session{}, err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return Session{}, apiErrors.APIError{Code: apiErrors.Unauthorized, Message: "invalid credentials"}
	}
	if !user.IsActive {
		return Session{}, apiErrors.APIError{Code: apiErrors.Forbidden, Message: "account is deactivated"}
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// CurrentUser resolves the profile behind a verified token. A token whose
// user no longer exists or was deactivated counts as an expired session.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apiErrors.APIError{Code: apiErrors.Unauthorized, Message: "session expired"}
		}
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, apiErrors.APIError{Code: apiErrors.Unauthorized, Message: "session expired"}
	}
	return user, nil
}

// ForgotPassword issues a reset token for the account, if any. It never
// reveals whether the email exists. The token is only handed back to the
// caller behind the non-production expose flag.
func (s *Service) ForgotPassword(ctx context.Context, email string) (token string, exposed bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	token = auth.NewResetToken()
	expiry := time.Now().Add(s.opts.ResetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return "", false, err
	}
	s.log.Info("password reset requested", zap.Int64("user_id", user.ID))

	if s.opts.ExposeResetTokens && !s.opts.Production {
		return token, true, nil
	}
	return "", false, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apiErrors.APIError{Code: apiErrors.Validation, Message: "token and password required"}
	}

	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.Validation, Message: "invalid or expired token"}
		}
		return err
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return apiErrors.APIError{Code: apiErrors.Validation, Message: "invalid or expired token"}
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.log.Info("password reset completed", zap.Int64("user_id", user.ID))
	s.audit(ctx, model.Actor{UserID: user.ID, IP: ""}, "PASSWORD_RESET", fmt.Sprintf("Password reset for user %s", user.Username))
	return nil
}
