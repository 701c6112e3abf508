package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

type CreateRequestInput struct {
	Title       string
	Description string
	CategoryID  *int64
	Location    string
	Urgency     model.Urgency
	PhotoURL    *string
}

func (s *Service) checkCategory(ctx context.Context, id int64) error {
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown category"}
	}
	return nil
}

func (s *Service) CreateRequest(ctx context.Context, actor model.Actor, in CreateRequestInput) (model.HelpRequest, error) {
	if in.Title == "" || in.Description == "" {
		return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "title and description required"}
	}
	if in.Urgency == "" {
		in.Urgency = model.UrgencyMedium
	}
	if !model.ValidUrgency(in.Urgency) {
		return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown urgency"}
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
			return model.HelpRequest{}, err
		}
	}

	req, err := s.repo.CreateRequest(ctx, model.HelpRequest{
		RequesterID: actor.UserID,
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Location:    in.Location,
		Urgency:     in.Urgency,
		PhotoURL:    in.PhotoURL,
	})
	if err != nil {
		return model.HelpRequest{}, err
	}
	s.audit(ctx, actor, "REQUEST_CREATED", fmt.Sprintf("Created help request %d", req.ID))
	return req, nil
}

// ListRequests applies the caller's filter as given; an empty status means
// every status, not a default one.
func (s *Service) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.HelpRequest, error) {
	return s.repo.ListRequests(ctx, f)
}

func (s *Service) MyRequests(ctx context.Context, actor model.Actor) ([]model.HelpRequest, error) {
	return s.repo.ListRequestsByRequester(ctx, actor.UserID)
}

// ViewRequest returns the request and counts the view.
func (s *Service) ViewRequest(ctx context.Context, id int64) (model.HelpRequest, error) {
	req, err := s.repo.ViewRequest(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "request not found"}
		}
		return model.HelpRequest{}, err
	}
	return req, nil
}

type UpdateRequestInput struct {
	Title       *string
	Description *string
	CategoryID  *int64
	Location    *string
	Urgency     *model.Urgency
	Status      *model.RequestStatus
}

func (s *Service) UpdateRequest(ctx context.Context, actor model.Actor, id int64, in UpdateRequestInput) (model.HelpRequest, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "request not found"}
		}
		return model.HelpRequest{}, err
	}
	if req.RequesterID != actor.UserID {
		return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.Forbidden, Message: "not the request owner"}
	}
	if req.Status == model.RequestCompleted {
		return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "completed request cannot be modified"}
	}

	if in.Title != nil {
		req.Title = *in.Title
	}
	if in.Description != nil {
		req.Description = *in.Description
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
			return model.HelpRequest{}, err
		}
		req.CategoryID = in.CategoryID
	}
	if in.Location != nil {
		req.Location = *in.Location
	}
	if in.Urgency != nil {
		if !model.ValidUrgency(*in.Urgency) {
			return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown urgency"}
		}
		req.Urgency = *in.Urgency
	}
	if in.Status != nil && *in.Status != req.Status {
		if !req.Status.CanTransitionTo(*in.Status) {
			return model.HelpRequest{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "status cannot move backwards"}
		}
		req.Status = *in.Status
		if req.Status == model.RequestCompleted {
			now := time.Now().UTC()
			req.CompletedAt = &now
		}
	}

	updated, err := s.repo.UpdateRequest(ctx, req)
	if err != nil {
		return model.HelpRequest{}, err
	}
	s.audit(ctx, actor, "REQUEST_UPDATED", fmt.Sprintf("Updated help request %d", id))
	return updated, nil
}

func (s *Service) DeleteRequest(ctx context.Context, actor model.Actor, id int64) error {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.NotFound, Message: "request not found"}
		}
		return err
	}
	if req.RequesterID != actor.UserID {
		return apiErrors.APIError{Code: apiErrors.Forbidden, Message: "not the request owner"}
	}
	if err := s.repo.DeleteRequest(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "REQUEST_DELETED", fmt.Sprintf("Deleted help request %d", id))
	return nil
}
