package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokenFile := filepath.Join(t.TempDir(), "session.token")
	c, err := New(Config{BaseURL: srv.URL, TokenFile: tokenFile})
	assert.NoError(t, err)
	return c, tokenFile
}

func TestLogin_PersistsTokenAndSendsBearer(t *testing.T) {
	var seenAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"user":         model.User{ID: 1, Email: "u@example.com", Role: model.RolePIN},
		})
	})
	mux.HandleFunc("GET /api/requests/my-requests", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"requests": []model.HelpRequest{}})
	})

	c, tokenFile := newTestClient(t, mux)

	user, err := c.Login(context.Background(), "u@example.com", "pw")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	raw, err := os.ReadFile(tokenFile)
	assert.NoError(t, err)
	assert.Equal(t, "tok-123", string(raw))

	_, err = c.ListMyRequests(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", seenAuth)
}

func TestRestoreSession_ClearsTokenOn401(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "session expired"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokenFile := filepath.Join(t.TempDir(), "session.token")
	assert.NoError(t, os.WriteFile(tokenFile, []byte("stale-token"), 0o600))

	c, err := New(Config{BaseURL: srv.URL, TokenFile: tokenFile})
	assert.NoError(t, err)

	_, err = c.RestoreSession(context.Background())
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, statErr := os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, c.store.Token())
}

func TestRestoreSession_NoStoredToken(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())

	_, err := c.RestoreSession(context.Background())
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestAddToBlacklist_EmptyReasonNeverHitsNetwork(t *testing.T) {
	called := false
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.AddToBlacklist(context.Background(), 3, "")
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.False(t, called)
}

func TestSubmitReview_ClampsRating(t *testing.T) {
	var sent struct {
		Rating int `json:"rating"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/pin/review", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"review": model.Review{ID: 1, Rating: sent.Rating}})
	})

	c, _ := newTestClient(t, mux)

	review, err := c.SubmitReview(context.Background(), 3, 5, 9, "over the top")
	assert.NoError(t, err)
	assert.Equal(t, 5, sent.Rating)
	assert.Equal(t, 5, review.Rating)

	_, err = c.SubmitReview(context.Background(), 3, 5, -2, "harsh")
	assert.NoError(t, err)
	assert.Equal(t, 1, sent.Rating)
}

func TestCreateRequest_DefaultsUrgency(t *testing.T) {
	var sent struct {
		Urgency model.Urgency `json:"urgency"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/requests", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"request": model.HelpRequest{ID: 1, Urgency: sent.Urgency}})
	})

	c, _ := newTestClient(t, mux)

	req, err := c.CreateRequest(context.Background(), CreateRequestInput{Title: "t", Description: "d"})
	assert.NoError(t, err)
	assert.Equal(t, model.UrgencyMedium, sent.Urgency)
	assert.Equal(t, model.UrgencyMedium, req.Urgency)
}

func TestDo_SurfacesServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/volunteers/offers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "CONFLICT", "message": "request is not open for offers"},
		})
	})

	c, _ := newTestClient(t, mux)

	_, err := c.CreateOffer(context.Background(), 5, "hi")
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, "request is not open for offers", apiErr.Message)
}

func TestExportUsersCSV_FilenameFromDisposition(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users/export-csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=users_export_20250601_120000.csv")
		_, _ = w.Write([]byte("ID,Username\n1,alice\n"))
	})

	c, _ := newTestClient(t, mux)

	filename, data, err := c.ExportUsersCSV(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "users_export_20250601_120000.csv", filename)
	assert.Contains(t, string(data), "alice")
}
