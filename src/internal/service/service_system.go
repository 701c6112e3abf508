package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

// Logs returns one page of the audit log, optionally filtered by action.
func (s *Service) Logs(ctx context.Context, page, perPage int, action string) (model.LogPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	return s.repo.ListLogs(ctx, page, perPage, action)
}

// AuditTrail returns the most recent log entries for one user.
func (s *Service) AuditTrail(ctx context.Context, userID int64) ([]model.AuditLogEntry, error) {
	return s.repo.ListLogsByUser(ctx, userID, 100)
}

func (s *Service) ExportLogsCSV(ctx context.Context, actor model.Actor) (filename string, data []byte, err error) {
	logs, err := s.repo.ListLogsForExport(ctx)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ID", "User", "Action", "Details", "IP Address", "Timestamp"})
	for _, e := range logs {
		_ = w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Username,
			e.Action,
			e.Details,
			e.IPAddress,
			e.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	s.audit(ctx, actor, "EXPORT_LOGS", fmt.Sprintf("Exported %d log entries to CSV", len(logs)))
	filename = fmt.Sprintf("audit_export_%s.csv", time.Now().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (s *Service) ScheduledReports(ctx context.Context) ([]model.ScheduledReport, error) {
	return s.repo.ListScheduledReports(ctx)
}

type CreateReportInput struct {
	Name       string
	ReportType model.ReportType
	Frequency  model.ReportFrequency
	Recipients string
}

func (s *Service) CreateScheduledReport(ctx context.Context, actor model.Actor, in CreateReportInput) (model.ScheduledReport, error) {
	if in.Name == "" {
		return model.ScheduledReport{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "name required"}
	}
	if !model.ValidReportType(in.ReportType) {
		return model.ScheduledReport{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown report type"}
	}
	if in.Frequency == "" {
		in.Frequency = model.FrequencyDaily
	}
	if !model.ValidFrequency(in.Frequency) {
		return model.ScheduledReport{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown frequency"}
	}

	next := time.Now().UTC().Add(in.Frequency.Interval())
	report, err := s.repo.CreateScheduledReport(ctx, model.ScheduledReport{
		Name:       in.Name,
		ReportType: in.ReportType,
		Frequency:  in.Frequency,
		Recipients: in.Recipients,
		IsActive:   true,
		NextRun:    &next,
	})
	if err != nil {
		return model.ScheduledReport{}, err
	}
	s.audit(ctx, actor, "REPORT_SCHEDULED", fmt.Sprintf("Scheduled %s report %q", in.ReportType, in.Name))
	return report, nil
}

// RunDueReports executes every report whose next run is at or before now
// and reschedules it. Called periodically by the report runner goroutine.
func (s *Service) RunDueReports(ctx context.Context, now time.Time) error {
	due, err := s.repo.DueReports(ctx, now)
	if err != nil {
		return err
	}

	for _, rep := range due {
		if err := s.runReport(ctx, rep); err != nil {
			s.log.Error("scheduled report failed",
				zap.Int64("report_id", rep.ID),
				zap.String("report_type", string(rep.ReportType)),
				zap.Error(err))
			continue
		}
		next := now.Add(rep.Frequency.Interval())
		if err := s.repo.MarkReportRun(ctx, rep.ID, now, next); err != nil {
			s.log.Error("rescheduling report failed", zap.Int64("report_id", rep.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) runReport(ctx context.Context, rep model.ScheduledReport) error {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return err
	}
	s.log.Info("scheduled report generated",
		zap.Int64("report_id", rep.ID),
		zap.String("report_type", string(rep.ReportType)),
		zap.Int("total_users", stats.TotalUsers),
		zap.Int("total_requests", stats.TotalRequests))
	s.audit(ctx, model.Actor{}, "REPORT_GENERATED", fmt.Sprintf("Generated %s report %q", rep.ReportType, rep.Name))
	return nil
}
