package api

import (
	"encoding/json"
	"net/http"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
)

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID int64  `json:"request_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestID <= 0 {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "request_id required")
		return
	}
	offer, err := h.svc.CreateOffer(r.Context(), ActorFrom(r.Context()), req.RequestID, req.Message)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"offer": offer})
}

func (h *Handler) withdrawOffer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	offer, err := h.svc.WithdrawOffer(r.Context(), ActorFrom(r.Context()), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offer": offer})
}

func (h *Handler) myOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.MyOffers(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers})
}

func (h *Handler) acceptedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.AcceptedTasks(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	if err := h.svc.CompleteTask(r.Context(), ActorFrom(r.Context()), id); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "task completed"})
}
