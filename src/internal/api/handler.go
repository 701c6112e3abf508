package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/auth"
	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/internal/service"
)

type Handler struct {
	svc *service.Service
	log *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

func RegisterRoutes(r *chi.Mux, h *Handler, tokens *auth.TokenManager) {
	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", withTimeout(h.register))
		api.Post("/auth/login", withTimeout(h.login))
		api.Post("/auth/forgot-password", withTimeout(h.forgotPassword))
		api.Post("/auth/reset-password", withTimeout(h.resetPassword))

		api.Group(func(priv chi.Router) {
			priv.Use(Authenticate(tokens))

			priv.Get("/auth/me", withTimeout(h.me))

			priv.Get("/requests", withTimeout(h.listRequests))
			priv.Post("/requests", withTimeout(h.createRequest))
			priv.Get("/requests/my-requests", withTimeout(h.myRequests))
			priv.Get("/requests/{id}", withTimeout(h.getRequest))
			priv.Put("/requests/{id}", withTimeout(h.updateRequest))
			priv.Delete("/requests/{id}", withTimeout(h.deleteRequest))

			priv.Post("/volunteers/offers", withTimeout(h.createOffer))
			priv.Put("/volunteers/offers/{id}/withdraw", withTimeout(h.withdrawOffer))
			priv.Get("/volunteers/my-offers", withTimeout(h.myOffers))
			priv.Get("/csr/accepted-tasks", withTimeout(h.acceptedTasks))
			priv.Put("/csr/complete-task/{id}", withTimeout(h.completeTask))

			priv.Get("/pin/shortlist", withTimeout(h.shortlist))
			priv.Post("/pin/shortlist", withTimeout(h.addShortlist))
			priv.Delete("/pin/shortlist/{id}", withTimeout(h.removeShortlist))
			priv.Get("/pin/blacklist", withTimeout(h.blacklist))
			priv.Post("/pin/blacklist", withTimeout(h.addBlacklist))
			priv.Delete("/pin/blacklist/{id}", withTimeout(h.removeBlacklist))
			priv.Post("/pin/review", withTimeout(h.submitReview))
			priv.Get("/pin/reviews/{volunteerId}", withTimeout(h.reviews))

			priv.Get("/users/{id}", withTimeout(h.getUser))
			priv.Get("/users/{id}/profile", withTimeout(h.getProfile))
			priv.Put("/users/{id}", withTimeout(h.updateUser))
			priv.Delete("/users/{id}", withTimeout(h.deleteUser))
			priv.Get("/categories", withTimeout(h.categories))

			priv.Group(func(admin chi.Router) {
				admin.Use(RequireCapability(model.CapManageUsers))
				admin.Get("/users", withTimeout(h.listUsers))
				admin.Get("/admin/users/export-csv", withTimeout(h.exportUsersCSV))
				admin.Put("/admin/users/assign-role/{id}", withTimeout(h.assignRole))
				admin.Put("/admin/users/deactivate/{id}", withTimeout(h.deactivateUser))
				admin.Post("/admin/categories", withTimeout(h.createCategory))
				admin.Get("/admin/categories", withTimeout(h.categories))
			})

			priv.With(RequireCapability(model.CapViewStats)).
				Get("/admin/stats", withTimeout(h.stats))

			priv.Group(func(sys chi.Router) {
				sys.Use(RequireCapability(model.CapViewLogs))
				sys.Get("/system/logs", withTimeout(h.logs))
				sys.Get("/system/audit-trail/{userId}", withTimeout(h.auditTrail))
				sys.Get("/system/export-csv", withTimeout(h.exportLogsCSV))
			})
			priv.Group(func(rep chi.Router) {
				rep.Use(RequireCapability(model.CapManageReports))
				rep.Get("/system/scheduled-reports", withTimeout(h.scheduledReports))
				rep.Post("/system/scheduled-reports", withTimeout(h.createScheduledReport))
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
}

func withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeCSV sends a raw CSV attachment.
func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, code int, errCode apiErrors.ErrorCode, message string) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{"code": errCode, "message": message},
	})
}

func handleSvcError(w http.ResponseWriter, err error) {
	var e apiErrors.APIError
	switch {
	case errors.As(err, &e):
		switch e.Code {
		case apiErrors.Validation:
			writeError(w, http.StatusBadRequest, e.Code, e.Message)
		case apiErrors.Unauthorized:
			writeError(w, http.StatusUnauthorized, e.Code, e.Message)
		case apiErrors.Forbidden:
			writeError(w, http.StatusForbidden, e.Code, e.Message)
		case apiErrors.NotFound:
			writeError(w, http.StatusNotFound, e.Code, e.Message)
		case apiErrors.Conflict:
			writeError(w, http.StatusConflict, e.Code, e.Message)
		default:
			writeError(w, http.StatusInternalServerError, apiErrors.InternalError, e.Message)
		}
	default:
		writeError(w, http.StatusInternalServerError, apiErrors.InternalError, err.Error())
	}
}
