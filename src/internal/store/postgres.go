package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

// Repository is the persistence surface the service layer depends on.
type Repository interface {
	CreateUser(ctx context.Context, u model.User, p model.UserProfile) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByResetToken(ctx context.Context, token string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserFields(ctx context.Context, id int64, email, username *string) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AssignRole(ctx context.Context, id int64, role model.Role) (model.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (model.User, error)
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	GetProfile(ctx context.Context, userID int64) (model.UserProfile, error)

	CreateRequest(ctx context.Context, r model.HelpRequest) (model.HelpRequest, error)
	GetRequest(ctx context.Context, id int64) (model.HelpRequest, error)
	ViewRequest(ctx context.Context, id int64) (model.HelpRequest, error)
	ListRequests(ctx context.Context, f model.RequestFilter) ([]model.HelpRequest, error)
	ListRequestsByRequester(ctx context.Context, userID int64) ([]model.HelpRequest, error)
	UpdateRequest(ctx context.Context, r model.HelpRequest) (model.HelpRequest, error)
	DeleteRequest(ctx context.Context, id int64) error

	UpsertOffer(ctx context.Context, o model.Offer) (model.Offer, error)
	GetOffer(ctx context.Context, id int64) (model.Offer, error)
	SetOfferStatus(ctx context.Context, id int64, st model.OfferStatus) (model.Offer, error)
	ListOffersByVolunteer(ctx context.Context, volunteerID int64) ([]model.Offer, error)
	ListAcceptedTasks(ctx context.Context, volunteerID int64) ([]model.AcceptedTask, error)
	HasAcceptedOffer(ctx context.Context, requestID, volunteerID int64) (bool, error)
	CompleteTask(ctx context.Context, o model.Offer, at time.Time) error

	AddShortlist(ctx context.Context, pinID, volunteerID int64) (model.ShortlistEntry, error)
	ListShortlist(ctx context.Context, pinID int64) ([]model.ShortlistEntry, error)
	DeleteShortlistEntry(ctx context.Context, pinID, entryID int64) error
	InShortlist(ctx context.Context, pinID, volunteerID int64) (bool, error)
	AddBlacklist(ctx context.Context, pinID, volunteerID int64, reason string) (model.BlacklistEntry, error)
	ListBlacklist(ctx context.Context, pinID int64) ([]model.BlacklistEntry, error)
	DeleteBlacklistByVolunteer(ctx context.Context, pinID, volunteerID int64) error
	InBlacklist(ctx context.Context, pinID, volunteerID int64) (bool, error)
	CreateReview(ctx context.Context, rv model.Review) (model.Review, error)
	ListReviews(ctx context.Context, volunteerID int64) ([]model.Review, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name, description string) (model.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)

	InsertLog(ctx context.Context, e model.AuditLogEntry) error
	ListLogs(ctx context.Context, page, perPage int, action string) (model.LogPage, error)
	ListLogsByUser(ctx context.Context, userID int64, limit int) ([]model.AuditLogEntry, error)
	ListLogsForExport(ctx context.Context) ([]model.AuditLogEntry, error)
	CreateScheduledReport(ctx context.Context, r model.ScheduledReport) (model.ScheduledReport, error)
	ListScheduledReports(ctx context.Context) ([]model.ScheduledReport, error)
	DueReports(ctx context.Context, now time.Time) ([]model.ScheduledReport, error)
	MarkReportRun(ctx context.Context, id int64, lastRun, nextRun time.Time) error

	GetStats(ctx context.Context) (model.Stats, error)
}

type Repositories struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewRepositories(db *sqlx.DB, logger *zap.Logger) *Repositories {
	return &Repositories{DB: db, Log: logger}
}

func (r *Repositories) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.DB.BeginTxx(ctx, &sql.TxOptions{})
}

// rollback is the deferred safety net for write transactions.
func (r *Repositories) rollback(tx *sqlx.Tx, op string) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		r.Log.Warn(op+": rollback failed", zap.Error(err))
	}
}
