package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func (c *Client) AddToShortlist(ctx context.Context, volunteerID int64) (model.ShortlistEntry, error) {
	body := map[string]any{"volunteer_id": volunteerID}
	var out struct {
		Entry model.ShortlistEntry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/pin/shortlist", body, &out); err != nil {
		return model.ShortlistEntry{}, err
	}
	return out.Entry, nil
}

func (c *Client) Shortlist(ctx context.Context) ([]model.ShortlistEntry, error) {
	var out struct {
		Shortlist []model.ShortlistEntry `json:"shortlist"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pin/shortlist", nil, &out); err != nil {
		return nil, err
	}
	return out.Shortlist, nil
}

func (c *Client) RemoveFromShortlist(ctx context.Context, entryID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/pin/shortlist/%d", entryID), nil, nil)
}

// AddToBlacklist rejects an empty reason before any network traffic.
func (c *Client) AddToBlacklist(ctx context.Context, volunteerID int64, reason string) (model.BlacklistEntry, error) {
	if reason == "" {
		return model.BlacklistEntry{}, &APIError{Status: http.StatusBadRequest, Code: "VALIDATION", Message: "reason required"}
	}
	body := map[string]any{"volunteer_id": volunteerID, "reason": reason}
	var out struct {
		Entry model.BlacklistEntry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/pin/blacklist", body, &out); err != nil {
		return model.BlacklistEntry{}, err
	}
	return out.Entry, nil
}

func (c *Client) Blacklist(ctx context.Context) ([]model.BlacklistEntry, error) {
	var out struct {
		Blacklist []model.BlacklistEntry `json:"blacklist"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pin/blacklist", nil, &out); err != nil {
		return nil, err
	}
	return out.Blacklist, nil
}

func (c *Client) RemoveFromBlacklist(ctx context.Context, volunteerID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/pin/blacklist/%d", volunteerID), nil, nil)
}

// SubmitReview clamps the rating into [1,5] before sending.
func (c *Client) SubmitReview(ctx context.Context, volunteerID, requestID int64, rating int, comment string) (model.Review, error) {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	body := map[string]any{
		"volunteer_id": volunteerID,
		"request_id":   requestID,
		"rating":       rating,
		"comment":      comment,
	}
	var out struct {
		Review model.Review `json:"review"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/pin/review", body, &out); err != nil {
		return model.Review{}, err
	}
	return out.Review, nil
}

func (c *Client) ListReviews(ctx context.Context, volunteerID int64) ([]model.Review, error) {
	var out struct {
		Reviews []model.Review `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pin/reviews/%d", volunteerID), nil, &out); err != nil {
		return nil, err
	}
	return out.Reviews, nil
}
