package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/auth"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

type MockRepositories struct {
	mock.Mock
}

func (m *MockRepositories) CreateUser(ctx context.Context, u model.User, p model.UserProfile) (model.User, error) {
	args := m.Called(ctx, u, p)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) GetUser(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) GetUserByResetToken(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockRepositories) UpdateUserFields(ctx context.Context, id int64, email, username *string) (model.User, error) {
	args := m.Called(ctx, id, email, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepositories) AssignRole(ctx context.Context, id int64, role model.Role) (model.User, error) {
	args := m.Called(ctx, id, role)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) SetUserActive(ctx context.Context, id int64, active bool) (model.User, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepositories) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	args := m.Called(ctx, id, token, expiry)
	return args.Error(0)
}

func (m *MockRepositories) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockRepositories) GetProfile(ctx context.Context, userID int64) (model.UserProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserProfile), args.Error(1)
}

func (m *MockRepositories) CreateRequest(ctx context.Context, r model.HelpRequest) (model.HelpRequest, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.HelpRequest), args.Error(1)
}

func (m *MockRepositories) GetRequest(ctx context.Context, id int64) (model.HelpRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.HelpRequest), args.Error(1)
}

func (m *MockRepositories) ViewRequest(ctx context.Context, id int64) (model.HelpRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.HelpRequest), args.Error(1)
}

func (m *MockRepositories) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.HelpRequest, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.HelpRequest), args.Error(1)
}

func (m *MockRepositories) ListRequestsByRequester(ctx context.Context, userID int64) ([]model.HelpRequest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.HelpRequest), args.Error(1)
}

func (m *MockRepositories) UpdateRequest(ctx context.Context, r model.HelpRequest) (model.HelpRequest, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.HelpRequest), args.Error(1)
}

func (m *MockRepositories) DeleteRequest(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepositories) UpsertOffer(ctx context.Context, o model.Offer) (model.Offer, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(model.Offer), args.Error(1)
}

func (m *MockRepositories) GetOffer(ctx context.Context, id int64) (model.Offer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Offer), args.Error(1)
}

func (m *MockRepositories) SetOfferStatus(ctx context.Context, id int64, st model.OfferStatus) (model.Offer, error) {
	args := m.Called(ctx, id, st)
	return args.Get(0).(model.Offer), args.Error(1)
}

func (m *MockRepositories) ListOffersByVolunteer(ctx context.Context, volunteerID int64) ([]model.Offer, error) {
	args := m.Called(ctx, volunteerID)
	return args.Get(0).([]model.Offer), args.Error(1)
}

func (m *MockRepositories) ListAcceptedTasks(ctx context.Context, volunteerID int64) ([]model.AcceptedTask, error) {
	args := m.Called(ctx, volunteerID)
	return args.Get(0).([]model.AcceptedTask), args.Error(1)
}

func (m *MockRepositories) HasAcceptedOffer(ctx context.Context, requestID, volunteerID int64) (bool, error) {
	args := m.Called(ctx, requestID, volunteerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositories) CompleteTask(ctx context.Context, o model.Offer, at time.Time) error {
	args := m.Called(ctx, o, at)
	return args.Error(0)
}

func (m *MockRepositories) AddShortlist(ctx context.Context, pinID, volunteerID int64) (model.ShortlistEntry, error) {
	args := m.Called(ctx, pinID, volunteerID)
	return args.Get(0).(model.ShortlistEntry), args.Error(1)
}

func (m *MockRepositories) ListShortlist(ctx context.Context, pinID int64) ([]model.ShortlistEntry, error) {
	args := m.Called(ctx, pinID)
	return args.Get(0).([]model.ShortlistEntry), args.Error(1)
}

func (m *MockRepositories) DeleteShortlistEntry(ctx context.Context, pinID, entryID int64) error {
	args := m.Called(ctx, pinID, entryID)
	return args.Error(0)
}

func (m *MockRepositories) InShortlist(ctx context.Context, pinID, volunteerID int64) (bool, error) {
	args := m.Called(ctx, pinID, volunteerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositories) AddBlacklist(ctx context.Context, pinID, volunteerID int64, reason string) (model.BlacklistEntry, error) {
	args := m.Called(ctx, pinID, volunteerID, reason)
	return args.Get(0).(model.BlacklistEntry), args.Error(1)
}

func (m *MockRepositories) ListBlacklist(ctx context.Context, pinID int64) ([]model.BlacklistEntry, error) {
	args := m.Called(ctx, pinID)
	return args.Get(0).([]model.BlacklistEntry), args.Error(1)
}

func (m *MockRepositories) DeleteBlacklistByVolunteer(ctx context.Context, pinID, volunteerID int64) error {
	args := m.Called(ctx, pinID, volunteerID)
	return args.Error(0)
}

func (m *MockRepositories) InBlacklist(ctx context.Context, pinID, volunteerID int64) (bool, error) {
	args := m.Called(ctx, pinID, volunteerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositories) CreateReview(ctx context.Context, rv model.Review) (model.Review, error) {
	args := m.Called(ctx, rv)
	return args.Get(0).(model.Review), args.Error(1)
}

func (m *MockRepositories) ListReviews(ctx context.Context, volunteerID int64) ([]model.Review, error) {
	args := m.Called(ctx, volunteerID)
	return args.Get(0).([]model.Review), args.Error(1)
}

func (m *MockRepositories) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockRepositories) CreateCategory(ctx context.Context, name, description string) (model.Category, error) {
	args := m.Called(ctx, name, description)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *MockRepositories) CategoryExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepositories) InsertLog(ctx context.Context, e model.AuditLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepositories) ListLogs(ctx context.Context, page, perPage int, action string) (model.LogPage, error) {
	args := m.Called(ctx, page, perPage, action)
	return args.Get(0).(model.LogPage), args.Error(1)
}

func (m *MockRepositories) ListLogsByUser(ctx context.Context, userID int64, limit int) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

func (m *MockRepositories) ListLogsForExport(ctx context.Context) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

func (m *MockRepositories) CreateScheduledReport(ctx context.Context, r model.ScheduledReport) (model.ScheduledReport, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.ScheduledReport), args.Error(1)
}

func (m *MockRepositories) ListScheduledReports(ctx context.Context) ([]model.ScheduledReport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ScheduledReport), args.Error(1)
}

func (m *MockRepositories) DueReports(ctx context.Context, now time.Time) ([]model.ScheduledReport, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]model.ScheduledReport), args.Error(1)
}

func (m *MockRepositories) MarkReportRun(ctx context.Context, id int64, lastRun, nextRun time.Time) error {
	args := m.Called(ctx, id, lastRun, nextRun)
	return args.Error(0)
}

func (m *MockRepositories) GetStats(ctx context.Context) (model.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Stats), args.Error(1)
}

// plainHasher keeps tests fast; bcrypt is covered elsewhere.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }
func (plainHasher) Verify(hash, pw string) bool    { return hash == "h:"+pw }

func createTestService() (*Service, *MockRepositories) {
	mockRepo := new(MockRepositories)
	mockRepo.On("InsertLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewService(mockRepo, zap.NewNop(), tokens, plainHasher{}, Options{ExposeResetTokens: true})
	return svc, mockRepo
}

func assertAPIError(t *testing.T, err error, code apiErrors.ErrorCode) {
	t.Helper()
	var e apiErrors.APIError
	assert.ErrorAs(t, err, &e)
	assert.Equal(t, code, e.Code)
}

func TestRegister_DefaultsToPinRole(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "new@example.com").Return(model.User{}, model.ErrNotFound)
	mockRepo.On("GetUserByUsername", mock.Anything, "newbie").Return(model.User{}, model.ErrNotFound)
	mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Role == model.RolePIN && u.PasswordHash == "h:secret123"
	}), mock.Anything).Return(model.User{ID: 1, Email: "new@example.com", Username: "newbie", Role: model.RolePIN, IsActive: true}, nil)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email: "New@Example.com", Username: "newbie", Password: "secret123",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, model.RolePIN, session.User.Role)
	mockRepo.AssertExpectations(t)
}

func TestRegister_PreservesRequestedRole(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "csr@example.com").Return(model.User{}, model.ErrNotFound)
	mockRepo.On("GetUserByUsername", mock.Anything, "helper").Return(model.User{}, model.ErrNotFound)
	mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Role == model.RoleCSR
	}), mock.Anything).Return(model.User{ID: 2, Role: model.RoleCSR, IsActive: true}, nil)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email: "csr@example.com", Username: "helper", Password: "pw", Role: model.RoleCSR,
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RoleCSR, session.User.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "taken@example.com").Return(model.User{ID: 1}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "taken@example.com", Username: "x", Password: "pw",
	})
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "u@example.com").
		Return(model.User{ID: 1, PasswordHash: "h:right", IsActive: true}, nil)

	_, err := svc.Login(context.Background(), "u@example.com", "wrong")
	assertAPIError(t, err, apiErrors.Unauthorized)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "u@example.com").
		Return(model.User{ID: 1, PasswordHash: "h:pw", IsActive: false}, nil)

	_, err := svc.Login(context.Background(), "u@example.com", "pw")
	assertAPIError(t, err, apiErrors.Forbidden)
}

func TestCreateRequest_DefaultsUrgencyMedium(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("CreateRequest", mock.Anything, mock.MatchedBy(func(r model.HelpRequest) bool {
		return r.Urgency == model.UrgencyMedium && r.RequesterID == 7
	})).Return(model.HelpRequest{ID: 1, Status: model.RequestPending, Urgency: model.UrgencyMedium}, nil)

	req, err := svc.CreateRequest(context.Background(), model.Actor{UserID: 7}, CreateRequestInput{
		Title: "Need groceries", Description: "weekly shop",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, 0, req.ViewCount)
}

func TestCreateRequest_CarriesCategory(t *testing.T) {
	svc, mockRepo := createTestService()

	catID := int64(2)
	mockRepo.On("CategoryExists", mock.Anything, int64(2)).Return(true, nil)
	mockRepo.On("CreateRequest", mock.Anything, mock.MatchedBy(func(r model.HelpRequest) bool {
		return r.CategoryID != nil && *r.CategoryID == 2
	})).Return(model.HelpRequest{ID: 1, CategoryID: &catID, Status: model.RequestPending}, nil)

	req, err := svc.CreateRequest(context.Background(), model.Actor{UserID: 7}, CreateRequestInput{
		Title: "Grocery run", Description: "weekly shop", CategoryID: &catID,
	})
	assert.NoError(t, err)
	assert.NotNil(t, req.CategoryID)
	assert.Equal(t, int64(2), *req.CategoryID)
	mockRepo.AssertExpectations(t)
}

func TestCreateRequest_UnknownCategory(t *testing.T) {
	svc, mockRepo := createTestService()

	catID := int64(99)
	mockRepo.On("CategoryExists", mock.Anything, int64(99)).Return(false, nil)

	_, err := svc.CreateRequest(context.Background(), model.Actor{UserID: 7}, CreateRequestInput{
		Title: "t", Description: "d", CategoryID: &catID,
	})
	assertAPIError(t, err, apiErrors.Validation)
	mockRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
}

func TestUpdateRequest_ChangesCategory(t *testing.T) {
	svc, mockRepo := createTestService()

	catID := int64(3)
	mockRepo.On("GetRequest", mock.Anything, int64(1)).
		Return(model.HelpRequest{ID: 1, RequesterID: 7, Status: model.RequestPending}, nil)
	mockRepo.On("CategoryExists", mock.Anything, int64(3)).Return(true, nil)
	mockRepo.On("UpdateRequest", mock.Anything, mock.MatchedBy(func(r model.HelpRequest) bool {
		return r.CategoryID != nil && *r.CategoryID == 3
	})).Return(model.HelpRequest{ID: 1, CategoryID: &catID}, nil)

	updated, err := svc.UpdateRequest(context.Background(), model.Actor{UserID: 7}, 1, UpdateRequestInput{CategoryID: &catID})
	assert.NoError(t, err)
	assert.NotNil(t, updated.CategoryID)
}

func TestListRequests_FilterPassesThrough(t *testing.T) {
	svc, mockRepo := createTestService()

	f := model.RequestFilter{Urgency: model.UrgencyHigh, CategoryID: 2}
	mockRepo.On("ListRequests", mock.Anything, f).Return([]model.HelpRequest{}, nil)

	_, err := svc.ListRequests(context.Background(), f)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListRequests_EmptyStatusMeansAllStatuses(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("ListRequests", mock.Anything, mock.MatchedBy(func(f model.RequestFilter) bool {
		return f.Status == ""
	})).Return([]model.HelpRequest{}, nil)

	_, err := svc.ListRequests(context.Background(), model.RequestFilter{})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateRequest_MissingTitle(t *testing.T) {
	svc, _ := createTestService()

	_, err := svc.CreateRequest(context.Background(), model.Actor{UserID: 7}, CreateRequestInput{Description: "x"})
	assertAPIError(t, err, apiErrors.Validation)
}

func TestUpdateRequest_CompletedIsImmutable(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(1)).
		Return(model.HelpRequest{ID: 1, RequesterID: 7, Status: model.RequestCompleted}, nil)

	title := "new title"
	_, err := svc.UpdateRequest(context.Background(), model.Actor{UserID: 7}, 1, UpdateRequestInput{Title: &title})
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestUpdateRequest_StatusCannotMoveBackwards(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(1)).
		Return(model.HelpRequest{ID: 1, RequesterID: 7, Status: model.RequestAccepted}, nil)

	back := model.RequestPending
	_, err := svc.UpdateRequest(context.Background(), model.Actor{UserID: 7}, 1, UpdateRequestInput{Status: &back})
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestUpdateRequest_NotOwner(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(1)).
		Return(model.HelpRequest{ID: 1, RequesterID: 7, Status: model.RequestPending}, nil)

	title := "hijack"
	_, err := svc.UpdateRequest(context.Background(), model.Actor{UserID: 8}, 1, UpdateRequestInput{Title: &title})
	assertAPIError(t, err, apiErrors.Forbidden)
}

func TestUpdateRequest_CompletingStampsCompletedAt(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(1)).
		Return(model.HelpRequest{ID: 1, RequesterID: 7, Status: model.RequestPending}, nil)
	mockRepo.On("UpdateRequest", mock.Anything, mock.MatchedBy(func(r model.HelpRequest) bool {
		return r.Status == model.RequestCompleted && r.CompletedAt != nil
	})).Return(model.HelpRequest{ID: 1, Status: model.RequestCompleted}, nil)

	done := model.RequestCompleted
	updated, err := svc.UpdateRequest(context.Background(), model.Actor{UserID: 7}, 1, UpdateRequestInput{Status: &done})
	assert.NoError(t, err)
	assert.Equal(t, model.RequestCompleted, updated.Status)
}

func TestCreateOffer_LeavesRequestPending(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, Status: model.RequestPending}, nil)
	mockRepo.On("UpsertOffer", mock.Anything, mock.MatchedBy(func(o model.Offer) bool {
		return o.Status == model.OfferAccepted && o.VolunteerID == 3
	})).Return(model.Offer{ID: 9, RequestID: 5, VolunteerID: 3, Status: model.OfferAccepted}, nil)

	offer, err := svc.CreateOffer(context.Background(), model.Actor{UserID: 3}, 5, "can help")
	assert.NoError(t, err)
	assert.Equal(t, model.OfferAccepted, offer.Status)
	mockRepo.AssertNotCalled(t, "UpdateRequest", mock.Anything, mock.Anything)
}

func TestCreateOffer_RequestNotOpen(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, Status: model.RequestCompleted}, nil)

	_, err := svc.CreateOffer(context.Background(), model.Actor{UserID: 3}, 5, "")
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestWithdrawOffer_CompletedRequestBlocks(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetOffer", mock.Anything, int64(9)).
		Return(model.Offer{ID: 9, RequestID: 5, VolunteerID: 3, Status: model.OfferAccepted}, nil)
	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, Status: model.RequestCompleted}, nil)

	_, err := svc.WithdrawOffer(context.Background(), model.Actor{UserID: 3}, 9)
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestWithdrawOffer_NotOwner(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetOffer", mock.Anything, int64(9)).
		Return(model.Offer{ID: 9, RequestID: 5, VolunteerID: 3}, nil)

	_, err := svc.WithdrawOffer(context.Background(), model.Actor{UserID: 4}, 9)
	assertAPIError(t, err, apiErrors.Forbidden)
}

func TestCompleteTask_Success(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetOffer", mock.Anything, int64(9)).
		Return(model.Offer{ID: 9, RequestID: 5, VolunteerID: 3, Status: model.OfferAccepted}, nil)
	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, Status: model.RequestPending}, nil)
	mockRepo.On("CompleteTask", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := svc.CompleteTask(context.Background(), model.Actor{UserID: 3}, 9)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCompleteTask_OthersOfferLooksMissing(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetOffer", mock.Anything, int64(9)).
		Return(model.Offer{ID: 9, RequestID: 5, VolunteerID: 3, Status: model.OfferAccepted}, nil)

	err := svc.CompleteTask(context.Background(), model.Actor{UserID: 4}, 9)
	assertAPIError(t, err, apiErrors.NotFound)
}

func TestCompleteTask_WithdrawnOffer(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetOffer", mock.Anything, int64(9)).
		Return(model.Offer{ID: 9, RequestID: 5, VolunteerID: 3, Status: model.OfferWithdrawn}, nil)

	err := svc.CompleteTask(context.Background(), model.Actor{UserID: 3}, 9)
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestSubmitReview_RequiresCompletedRequest(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, RequesterID: 7, Status: model.RequestPending}, nil)

	_, err := svc.SubmitReview(context.Background(), model.Actor{UserID: 7}, 3, 5, 4, "great")
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestSubmitReview_RequiresOffer(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, RequesterID: 7, Status: model.RequestCompleted}, nil)
	mockRepo.On("HasAcceptedOffer", mock.Anything, int64(5), int64(3)).Return(false, nil)

	_, err := svc.SubmitReview(context.Background(), model.Actor{UserID: 7}, 3, 5, 4, "")
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestSubmitReview_WithdrawnVolunteerNotEligible(t *testing.T) {
	svc, mockRepo := createTestService()

	// the volunteer offered and withdrew before someone else finished the job
	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, RequesterID: 7, Status: model.RequestCompleted}, nil)
	mockRepo.On("HasAcceptedOffer", mock.Anything, int64(5), int64(9)).Return(false, nil)

	_, err := svc.SubmitReview(context.Background(), model.Actor{UserID: 7}, 9, 5, 5, "never showed")
	assertAPIError(t, err, apiErrors.Conflict)
	mockRepo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	svc, _ := createTestService()

	_, err := svc.SubmitReview(context.Background(), model.Actor{UserID: 7}, 3, 5, 6, "")
	assertAPIError(t, err, apiErrors.Validation)
}

func TestSubmitReview_Success(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetRequest", mock.Anything, int64(5)).
		Return(model.HelpRequest{ID: 5, RequesterID: 7, Status: model.RequestCompleted}, nil)
	mockRepo.On("HasAcceptedOffer", mock.Anything, int64(5), int64(3)).Return(true, nil)
	mockRepo.On("CreateReview", mock.Anything, mock.MatchedBy(func(rv model.Review) bool {
		return rv.PinID == 7 && rv.VolunteerID == 3 && rv.Rating == 5
	})).Return(model.Review{ID: 1, Rating: 5}, nil)

	review, err := svc.SubmitReview(context.Background(), model.Actor{UserID: 7}, 3, 5, 5, "superb")
	assert.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
}

func TestAddToBlacklist_RequiresReason(t *testing.T) {
	svc, _ := createTestService()

	_, err := svc.AddToBlacklist(context.Background(), model.Actor{UserID: 7}, 3, "")
	assertAPIError(t, err, apiErrors.Validation)
}

func TestAddToBlacklist_ShortlistedVolunteer(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUser", mock.Anything, int64(3)).Return(model.User{ID: 3}, nil)
	mockRepo.On("InShortlist", mock.Anything, int64(7), int64(3)).Return(true, nil)

	_, err := svc.AddToBlacklist(context.Background(), model.Actor{UserID: 7}, 3, "rude")
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestAddToShortlist_BlacklistedVolunteer(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUser", mock.Anything, int64(3)).Return(model.User{ID: 3}, nil)
	mockRepo.On("InBlacklist", mock.Anything, int64(7), int64(3)).Return(true, nil)

	_, err := svc.AddToShortlist(context.Background(), model.Actor{UserID: 7}, 3)
	assertAPIError(t, err, apiErrors.Conflict)
}

func TestForgotPassword_UnknownEmailStaysQuiet(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, model.ErrNotFound)

	token, exposed, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.False(t, exposed)
	assert.Empty(t, token)
}

func TestForgotPassword_ExposesTokenOutsideProd(t *testing.T) {
	svc, mockRepo := createTestService()

	mockRepo.On("GetUserByEmail", mock.Anything, "u@example.com").Return(model.User{ID: 1}, nil)
	mockRepo.On("SetResetToken", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(nil)

	token, exposed, err := svc.ForgotPassword(context.Background(), "u@example.com")
	assert.NoError(t, err)
	assert.True(t, exposed)
	assert.NotEmpty(t, token)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, mockRepo := createTestService()

	past := time.Now().Add(-time.Minute)
	mockRepo.On("GetUserByResetToken", mock.Anything, "tok").
		Return(model.User{ID: 1, ResetTokenExpiry: &past}, nil)

	err := svc.ResetPassword(context.Background(), "tok", "newpw")
	assertAPIError(t, err, apiErrors.Validation)
}

func TestAssignRole_UnknownRole(t *testing.T) {
	svc, _ := createTestService()

	_, err := svc.AssignRole(context.Background(), model.Actor{UserID: 1, Role: model.RoleAdmin}, 2, "superuser")
	assertAPIError(t, err, apiErrors.Validation)
}

func TestUpdateUser_OtherUserNeedsManageCapability(t *testing.T) {
	svc, _ := createTestService()

	email := "x@example.com"
	_, err := svc.UpdateUser(context.Background(), model.Actor{UserID: 1, Role: model.RolePIN}, 2, UpdateUserInput{Email: &email})
	assertAPIError(t, err, apiErrors.Forbidden)
}

func TestRunDueReports_AdvancesSchedule(t *testing.T) {
	svc, mockRepo := createTestService()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rep := model.ScheduledReport{ID: 1, Name: "weekly digest", ReportType: model.ReportRequestSummary, Frequency: model.FrequencyWeekly, IsActive: true}

	mockRepo.On("DueReports", mock.Anything, now).Return([]model.ScheduledReport{rep}, nil)
	mockRepo.On("GetStats", mock.Anything).Return(model.Stats{TotalUsers: 10}, nil)
	mockRepo.On("MarkReportRun", mock.Anything, int64(1), now, now.Add(7*24*time.Hour)).Return(nil)

	err := svc.RunDueReports(context.Background(), now)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
