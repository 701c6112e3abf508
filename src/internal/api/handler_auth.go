package api

import (
	"encoding/json"
	"net/http"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/internal/service"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string     `json:"email"`
		Username    string     `json:"username"`
		Password    string     `json:"password"`
		Role        model.Role `json:"role"`
		FullName    string     `json:"full_name"`
		CompanyName string     `json:"company_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "invalid body")
		return
	}
	session, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "email and password required")
		return
	}
	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(r.Context(), ActorFrom(r.Context()).UserID)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// forgotPassword always answers 200 so callers cannot enumerate accounts.
func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "email required")
		return
	}
	token, exposed, err := h.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	body := map[string]any{"message": "if the email exists, a reset link was sent"}
	if exposed {
		body["reset_token"] = token
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "invalid body")
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "password updated"})
}
