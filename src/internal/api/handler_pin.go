package api

import (
	"encoding/json"
	"net/http"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
)

func (h *Handler) shortlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Shortlist(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shortlist": entries})
}

func (h *Handler) addShortlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VolunteerID int64 `json:"volunteer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VolunteerID <= 0 {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "volunteer_id required")
		return
	}
	entry, err := h.svc.AddToShortlist(r.Context(), ActorFrom(r.Context()), req.VolunteerID)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

func (h *Handler) removeShortlist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	if err := h.svc.RemoveFromShortlist(r.Context(), ActorFrom(r.Context()), id); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "removed from shortlist"})
}

func (h *Handler) blacklist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Blacklist(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blacklist": entries})
}

func (h *Handler) addBlacklist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VolunteerID int64  `json:"volunteer_id"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VolunteerID <= 0 {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "volunteer_id required")
		return
	}
	entry, err := h.svc.AddToBlacklist(r.Context(), ActorFrom(r.Context()), req.VolunteerID, req.Reason)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

// removeBlacklist takes the volunteer id, not the entry id.
func (h *Handler) removeBlacklist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	if err := h.svc.RemoveFromBlacklist(r.Context(), ActorFrom(r.Context()), id); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "removed from blacklist"})
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VolunteerID int64  `json:"volunteer_id"`
		RequestID   int64  `json:"request_id"`
		Rating      int    `json:"rating"`
		Comment     string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VolunteerID <= 0 || req.RequestID <= 0 {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "volunteer_id and request_id required")
		return
	}
	review, err := h.svc.SubmitReview(r.Context(), ActorFrom(r.Context()), req.VolunteerID, req.RequestID, req.Rating, req.Comment)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": review})
}

func (h *Handler) reviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "volunteerId")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	reviews, err := h.svc.Reviews(r.Context(), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}
