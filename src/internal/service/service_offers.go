package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

// CreateOffer records a volunteer's offer on an open request. Offers are
// accepted on creation; offering twice on the same request refreshes the
// earlier offer. The request itself stays pending until it is completed.
func (s *Service) CreateOffer(ctx context.Context, actor model.Actor, requestID int64, message string) (model.Offer, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Offer{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "request not found"}
		}
		return model.Offer{}, err
	}
	if req.Status != model.RequestPending {
		return model.Offer{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "request is not open for offers"}
	}

	offer, err := s.repo.UpsertOffer(ctx, model.Offer{
		RequestID:   requestID,
		VolunteerID: actor.UserID,
		Status:      model.OfferAccepted,
		Message:     message,
	})
	if err != nil {
		return model.Offer{}, err
	}
	s.audit(ctx, actor, "OFFER_CREATED", fmt.Sprintf("Offered help on request %d", requestID))
	return offer, nil
}

func (s *Service) WithdrawOffer(ctx context.Context, actor model.Actor, offerID int64) (model.Offer, error) {
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Offer{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "offer not found"}
		}
		return model.Offer{}, err
	}
	if offer.VolunteerID != actor.UserID {
		return model.Offer{}, apiErrors.APIError{Code: apiErrors.Forbidden, Message: "not the offer owner"}
	}

	req, err := s.repo.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return model.Offer{}, err
	}
	if req.Status == model.RequestCompleted {
		return model.Offer{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "cannot withdraw from a completed request"}
	}

	updated, err := s.repo.SetOfferStatus(ctx, offerID, model.OfferWithdrawn)
	if err != nil {
		return model.Offer{}, err
	}
	s.audit(ctx, actor, "OFFER_WITHDRAWN", fmt.Sprintf("Withdrew offer %d", offerID))
	return updated, nil
}

func (s *Service) MyOffers(ctx context.Context, actor model.Actor) ([]model.Offer, error) {
	return s.repo.ListOffersByVolunteer(ctx, actor.UserID)
}

func (s *Service) AcceptedTasks(ctx context.Context, actor model.Actor) ([]model.AcceptedTask, error) {
	return s.repo.ListAcceptedTasks(ctx, actor.UserID)
}

// CompleteTask marks the request behind one of the caller's accepted offers
// as completed, which in turn makes a review submittable.
func (s *Service) CompleteTask(ctx context.Context, actor model.Actor, offerID int64) error {
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.NotFound, Message: "task not found"}
		}
		return err
	}
	if offer.VolunteerID != actor.UserID {
		return apiErrors.APIError{Code: apiErrors.NotFound, Message: "task not found"}
	}
	if offer.Status != model.OfferAccepted {
		return apiErrors.APIError{Code: apiErrors.Conflict, Message: "task is not in accepted status"}
	}

	req, err := s.repo.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return err
	}
	if req.Status == model.RequestCompleted {
		return apiErrors.APIError{Code: apiErrors.Conflict, Message: "request already completed"}
	}

	if err := s.repo.CompleteTask(ctx, offer, time.Now().UTC()); err != nil {
		return err
	}
	s.audit(ctx, actor, "TASK_COMPLETED", fmt.Sprintf("Completed task for request %d", offer.RequestID))
	return nil
}
