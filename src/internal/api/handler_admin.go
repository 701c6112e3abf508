package api

import (
	"encoding/json"
	"net/http"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/internal/service"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	user, err := h.svc.GetUserByID(r.Context(), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	profile, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	var req struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "invalid body")
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), ActorFrom(r.Context()), id, service.UpdateUserInput{
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	if err := h.svc.DeleteUser(r.Context(), ActorFrom(r.Context()), id); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "user deleted"})
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	var req struct {
		Role model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "role required")
		return
	}
	user, err := h.svc.AssignRole(r.Context(), ActorFrom(r.Context()), id, req.Role)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	user, err := h.svc.DeactivateUser(r.Context(), ActorFrom(r.Context()), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) exportUsersCSV(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.svc.ExportUsersCSV(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeCSV(w, filename, data)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "name required")
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), ActorFrom(r.Context()), req.Name, req.Description)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"category": cat})
}
