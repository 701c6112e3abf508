package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out struct {
		Users []model.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) Profile(ctx context.Context, userID int64) (model.UserProfile, error) {
	var out struct {
		Profile model.UserProfile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/profile", userID), nil, &out); err != nil {
		return model.UserProfile{}, err
	}
	return out.Profile, nil
}

func (c *Client) AssignRole(ctx context.Context, userID int64, role model.Role) (model.User, error) {
	body := map[string]any{"role": role}
	var out struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/assign-role/%d", userID), body, &out); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

func (c *Client) DeactivateUser(ctx context.Context, userID int64) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/deactivate/%d", userID), nil, &out); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &out); err != nil {
		return model.Stats{}, err
	}
	return out, nil
}

// ExportUsersCSV returns the raw CSV payload and the server-chosen filename.
func (c *Client) ExportUsersCSV(ctx context.Context) (filename string, data []byte, err error) {
	return c.download(ctx, "/api/admin/users/export-csv")
}

func (c *Client) ExportAuditCSV(ctx context.Context) (filename string, data []byte, err error) {
	return c.download(ctx, "/api/system/export-csv")
}

func (c *Client) SystemLogs(ctx context.Context, page, perPage int, action string) (model.LogPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	if action != "" {
		q.Set("action", action)
	}
	path := "/api/system/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out model.LogPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return model.LogPage{}, err
	}
	return out, nil
}

func (c *Client) ScheduledReports(ctx context.Context) ([]model.ScheduledReport, error) {
	var out struct {
		Reports []model.ScheduledReport `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/system/scheduled-reports", nil, &out); err != nil {
		return nil, err
	}
	return out.Reports, nil
}

type CreateReportInput struct {
	Name       string                `json:"name"`
	ReportType model.ReportType      `json:"report_type"`
	Frequency  model.ReportFrequency `json:"frequency,omitempty"`
	Recipients string                `json:"recipients,omitempty"`
}

func (c *Client) CreateScheduledReport(ctx context.Context, in CreateReportInput) (model.ScheduledReport, error) {
	var out struct {
		Report model.ScheduledReport `json:"report"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/system/scheduled-reports", in, &out); err != nil {
		return model.ScheduledReport{}, err
	}
	return out.Report, nil
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out struct {
		Categories []model.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, name, description string) (model.Category, error) {
	body := map[string]any{"name": name, "description": description}
	var out struct {
		Category model.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/categories", body, &out); err != nil {
		return model.Category{}, err
	}
	return out.Category, nil
}
