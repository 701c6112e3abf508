package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/auth"
	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/internal/store"
)

type Service struct {
	repo   store.Repository
	log    *zap.Logger
	tokens *auth.TokenManager
	hasher auth.PasswordHasher
	opts   Options
}

type Options struct {
	Production bool
	// ExposeResetTokens returns reset tokens in API responses; ignored in prod.
	ExposeResetTokens bool
	ResetTokenTTL     time.Duration
}

func NewService(repo store.Repository, logger *zap.Logger, tokens *auth.TokenManager, hasher auth.PasswordHasher, opts Options) *Service {
	if opts.ResetTokenTTL == 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &Service{
		repo:   repo,
		log:    logger,
		tokens: tokens,
		hasher: hasher,
		opts:   opts,
	}
}

// audit appends a system log entry; failures are logged and swallowed so the
// triggering operation still succeeds.
func (s *Service) audit(ctx context.Context, actor model.Actor, action, details string) {
	entry := model.AuditLogEntry{
		Action:    action,
		Details:   details,
		IPAddress: actor.IP,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		entry.UserID = &uid
	}
	if err := s.repo.InsertLog(ctx, entry); err != nil {
		s.log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
