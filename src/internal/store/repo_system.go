package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

const logColumns = `l.id, l.user_id, COALESCE(u.username, 'System') AS username, l.action, l.details, l.ip_address, l.timestamp`

const logFrom = ` FROM system_logs l LEFT JOIN users u ON u.id = l.user_id `

func (r *Repositories) InsertLog(ctx context.Context, e model.AuditLogEntry) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO system_logs(user_id, action, details, ip_address, timestamp)
		 VALUES($1,$2,$3,$4,now())`,
		e.UserID, e.Action, e.Details, e.IPAddress)
	if err != nil {
		r.Log.Error("InsertLog: insert failed", zap.String("action", e.Action), zap.Error(err))
	}
	return err
}

func (r *Repositories) ListLogs(ctx context.Context, page, perPage int, action string) (model.LogPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 50
	}

	where := ``
	args := []any{}
	if action != "" {
		where = ` WHERE l.action=$1`
		args = append(args, action)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*)`+logFrom+where, args...); err != nil {
		r.Log.Error("ListLogs: count failed", zap.Error(err))
		return model.LogPage{}, err
	}

	logs := []model.AuditLogEntry{}
	q := `SELECT ` + logColumns + logFrom + where + ` ORDER BY l.timestamp DESC LIMIT ` +
		placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, perPage, (page-1)*perPage)
	if err := r.DB.SelectContext(ctx, &logs, q, args...); err != nil {
		r.Log.Error("ListLogs: query failed", zap.Error(err))
		return model.LogPage{}, err
	}

	pages := (total + perPage - 1) / perPage
	return model.LogPage{Logs: logs, Total: total, Pages: pages, CurrentPage: page}, nil
}

func (r *Repositories) ListLogsByUser(ctx context.Context, userID int64, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	logs := []model.AuditLogEntry{}
	err := r.DB.SelectContext(ctx, &logs,
		`SELECT `+logColumns+logFrom+`WHERE l.user_id=$1 ORDER BY l.timestamp DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		r.Log.Error("ListLogsByUser: query failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return logs, nil
}

func (r *Repositories) ListLogsForExport(ctx context.Context) ([]model.AuditLogEntry, error) {
	logs := []model.AuditLogEntry{}
	err := r.DB.SelectContext(ctx, &logs,
		`SELECT `+logColumns+logFrom+`ORDER BY l.timestamp DESC`)
	if err != nil {
		r.Log.Error("ListLogsForExport: query failed", zap.Error(err))
		return nil, err
	}
	return logs, nil
}

const reportColumns = `id, name, report_type, frequency, recipients, is_active, last_run, next_run, created_at`

func (r *Repositories) CreateScheduledReport(ctx context.Context, rep model.ScheduledReport) (model.ScheduledReport, error) {
	var saved model.ScheduledReport
	err := r.DB.QueryRowxContext(ctx,
		`INSERT INTO scheduled_reports(name, report_type, frequency, recipients, is_active, next_run, created_at)
		 VALUES($1,$2,$3,$4,true,$5,now()) RETURNING `+reportColumns,
		rep.Name, rep.ReportType, rep.Frequency, rep.Recipients, rep.NextRun).StructScan(&saved)
	if err != nil {
		r.Log.Error("CreateScheduledReport: insert failed", zap.String("name", rep.Name), zap.Error(err))
		return model.ScheduledReport{}, err
	}
	r.Log.Info("CreateScheduledReport: success", zap.Int64("report_id", saved.ID))
	return saved, nil
}

func (r *Repositories) ListScheduledReports(ctx context.Context) ([]model.ScheduledReport, error) {
	reports := []model.ScheduledReport{}
	err := r.DB.SelectContext(ctx, &reports,
		`SELECT `+reportColumns+` FROM scheduled_reports ORDER BY id`)
	if err != nil {
		r.Log.Error("ListScheduledReports: query failed", zap.Error(err))
		return nil, err
	}
	return reports, nil
}

func (r *Repositories) DueReports(ctx context.Context, now time.Time) ([]model.ScheduledReport, error) {
	reports := []model.ScheduledReport{}
	err := r.DB.SelectContext(ctx, &reports,
		`SELECT `+reportColumns+` FROM scheduled_reports
		 WHERE is_active AND next_run IS NOT NULL AND next_run <= $1`, now)
	if err != nil {
		r.Log.Error("DueReports: query failed", zap.Error(err))
		return nil, err
	}
	return reports, nil
}

func (r *Repositories) MarkReportRun(ctx context.Context, id int64, lastRun, nextRun time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE scheduled_reports SET last_run=$2, next_run=$3 WHERE id=$1`,
		id, lastRun, nextRun)
	if err != nil {
		r.Log.Error("MarkReportRun: update failed", zap.Int64("report_id", id), zap.Error(err))
	}
	return err
}

// placeholder renders a positional parameter like $3.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
