package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/internal/service"
)

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	logs, err := h.svc.Logs(r.Context(), page, perPage, q.Get("action"))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, err.Error())
		return
	}
	entries, err := h.svc.AuditTrail(r.Context(), id)
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

func (h *Handler) exportLogsCSV(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.svc.ExportLogsCSV(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeCSV(w, filename, data)
}

func (h *Handler) scheduledReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ScheduledReports(r.Context())
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) createScheduledReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string                `json:"name"`
		ReportType model.ReportType      `json:"report_type"`
		Frequency  model.ReportFrequency `json:"frequency"`
		Recipients string                `json:"recipients"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.Validation, "invalid body")
		return
	}
	report, err := h.svc.CreateScheduledReport(r.Context(), ActorFrom(r.Context()), service.CreateReportInput{
		Name:       req.Name,
		ReportType: req.ReportType,
		Frequency:  req.Frequency,
		Recipients: req.Recipients,
	})
	if err != nil {
		handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"report": report})
}
