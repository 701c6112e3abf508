package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/internal/service"
)

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category"), 10, 64)
	requests, err := h.svc.ListRequests(r.Context(), model.RequestFilter{
		Status:     model.RequestStatus(q.Get("status")),
		Urgency:    model.Urgency(q.Get("urgency")),
		Location:   q.Get("location"),
		CategoryID: categoryID,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		CategoryID  *int64        `json:"category_id"`
		Location    string        `json:"location"`
		Urgency     model.Urgency `json:"urgency"`
		PhotoURL    *string       `json:"photo_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "invalid body")
		return
	}
	created, err := h.svc.CreateRequest(r.Context(), ActorFrom(r.Context()), service.CreateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
		Urgency:     req.Urgency,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"request": created})
}

func (h *Handler) myRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.MyRequests(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	req, err := h.svc.ViewRequest(r.Context(), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": req})
}

func (h *Handler) updateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	var req struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		CategoryID  *int64               `json:"category_id"`
		Location    *string              `json:"location"`
		Urgency     *model.Urgency       `json:"urgency"`
		Status      *model.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "invalid body")
		return
	}
	updated, err := h.svc.UpdateRequest(r.Context(), ActorFrom(r.Context()), id, service.UpdateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
		Urgency:     req.Urgency,
		Status:      req.Status,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": updated})
}

func (h *Handler) deleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	if err := h.svc.DeleteRequest(r.Context(), ActorFrom(r.Context()), id); err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "request deleted"})
}
