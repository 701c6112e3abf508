package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

type CreateRequestInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategoryID  *int64        `json:"category_id,omitempty"`
	Location    string        `json:"location,omitempty"`
	Urgency     model.Urgency `json:"urgency,omitempty"`
	PhotoURL    *string       `json:"photo_url,omitempty"`
}

func (c *Client) CreateRequest(ctx context.Context, in CreateRequestInput) (model.HelpRequest, error) {
	if in.Urgency == "" {
		in.Urgency = model.UrgencyMedium
	}
	var out struct {
		Request model.HelpRequest `json:"request"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/requests", in, &out); err != nil {
		return model.HelpRequest{}, err
	}
	return out.Request, nil
}

type RequestFilter struct {
	Status     model.RequestStatus
	Urgency    model.Urgency
	Location   string
	CategoryID int64
}

func (c *Client) ListRequests(ctx context.Context, f RequestFilter) ([]model.HelpRequest, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Urgency != "" {
		q.Set("urgency", string(f.Urgency))
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.CategoryID != 0 {
		q.Set("category", strconv.FormatInt(f.CategoryID, 10))
	}
	path := "/api/requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Requests []model.HelpRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (c *Client) ListMyRequests(ctx context.Context) ([]model.HelpRequest, error) {
	var out struct {
		Requests []model.HelpRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/requests/my-requests", nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (c *Client) GetRequest(ctx context.Context, id int64) (model.HelpRequest, error) {
	var out struct {
		Request model.HelpRequest `json:"request"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/requests/%d", id), nil, &out); err != nil {
		return model.HelpRequest{}, err
	}
	return out.Request, nil
}

type UpdateRequestInput struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	CategoryID  *int64               `json:"category_id,omitempty"`
	Location    *string              `json:"location,omitempty"`
	Urgency     *model.Urgency       `json:"urgency,omitempty"`
	Status      *model.RequestStatus `json:"status,omitempty"`
}

func (c *Client) UpdateRequest(ctx context.Context, id int64, in UpdateRequestInput) (model.HelpRequest, error) {
	var out struct {
		Request model.HelpRequest `json:"request"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/requests/%d", id), in, &out); err != nil {
		return model.HelpRequest{}, err
	}
	return out.Request, nil
}

func (c *Client) DeleteRequest(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/requests/%d", id), nil, nil)
}

func (c *Client) CreateOffer(ctx context.Context, requestID int64, message string) (model.Offer, error) {
	body := map[string]any{"request_id": requestID, "message": message}
	var out struct {
		Offer model.Offer `json:"offer"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/volunteers/offers", body, &out); err != nil {
		return model.Offer{}, err
	}
	return out.Offer, nil
}

func (c *Client) WithdrawOffer(ctx context.Context, offerID int64) (model.Offer, error) {
	var out struct {
		Offer model.Offer `json:"offer"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/volunteers/offers/%d/withdraw", offerID), nil, &out); err != nil {
		return model.Offer{}, err
	}
	return out.Offer, nil
}

func (c *Client) ListMyOffers(ctx context.Context) ([]model.Offer, error) {
	var out struct {
		Offers []model.Offer `json:"offers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/volunteers/my-offers", nil, &out); err != nil {
		return nil, err
	}
	return out.Offers, nil
}

func (c *Client) AcceptedTasks(ctx context.Context) ([]model.AcceptedTask, error) {
	var out struct {
		Tasks []model.AcceptedTask `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/csr/accepted-tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CompleteTask(ctx context.Context, offerID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/csr/complete-task/%d", offerID), nil, nil)
}
