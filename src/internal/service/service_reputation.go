package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func (s *Service) volunteerExists(ctx context.Context, volunteerID int64) error {
	if _, err := s.repo.GetUser(ctx, volunteerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.NotFound, Message: "volunteer not found"}
		}
		return err
	}
	return nil
}

// AddToShortlist adds a volunteer to the caller's shortlist. A volunteer
// can sit on the shortlist or the blacklist, never both.
func (s *Service) AddToShortlist(ctx context.Context, actor model.Actor, volunteerID int64) (model.ShortlistEntry, error) {
	if err := s.volunteerExists(ctx, volunteerID); err != nil {
		return model.ShortlistEntry{}, err
	}
	if blacklisted, err := s.repo.InBlacklist(ctx, actor.UserID, volunteerID); err != nil {
		return model.ShortlistEntry{}, err
	} else if blacklisted {
		return model.ShortlistEntry{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "volunteer is blacklisted"}
	}
	if listed, err := s.repo.InShortlist(ctx, actor.UserID, volunteerID); err != nil {
		return model.ShortlistEntry{}, err
	} else if listed {
		return model.ShortlistEntry{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "volunteer already shortlisted"}
	}
	return s.repo.AddShortlist(ctx, actor.UserID, volunteerID)
}

func (s *Service) Shortlist(ctx context.Context, actor model.Actor) ([]model.ShortlistEntry, error) {
	return s.repo.ListShortlist(ctx, actor.UserID)
}

func (s *Service) RemoveFromShortlist(ctx context.Context, actor model.Actor, entryID int64) error {
	if err := s.repo.DeleteShortlistEntry(ctx, actor.UserID, entryID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.NotFound, Message: "shortlist entry not found"}
		}
		return err
	}
	return nil
}

// AddToBlacklist requires a reason; the same exclusivity rule applies as
// for the shortlist.
func (s *Service) AddToBlacklist(ctx context.Context, actor model.Actor, volunteerID int64, reason string) (model.BlacklistEntry, error) {
	if reason == "" {
		return model.BlacklistEntry{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "reason required"}
	}
	if err := s.volunteerExists(ctx, volunteerID); err != nil {
		return model.BlacklistEntry{}, err
	}
	if listed, err := s.repo.InShortlist(ctx, actor.UserID, volunteerID); err != nil {
		return model.BlacklistEntry{}, err
	} else if listed {
		return model.BlacklistEntry{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "volunteer is shortlisted"}
	}
	if blacklisted, err := s.repo.InBlacklist(ctx, actor.UserID, volunteerID); err != nil {
		return model.BlacklistEntry{}, err
	} else if blacklisted {
		return model.BlacklistEntry{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "volunteer already blacklisted"}
	}

	entry, err := s.repo.AddBlacklist(ctx, actor.UserID, volunteerID, reason)
	if err != nil {
		return model.BlacklistEntry{}, err
	}
	s.audit(ctx, actor, "VOLUNTEER_BLACKLISTED", fmt.Sprintf("Blacklisted volunteer %d", volunteerID))
	return entry, nil
}

func (s *Service) Blacklist(ctx context.Context, actor model.Actor) ([]model.BlacklistEntry, error) {
	return s.repo.ListBlacklist(ctx, actor.UserID)
}

func (s *Service) RemoveFromBlacklist(ctx context.Context, actor model.Actor, volunteerID int64) error {
	if err := s.repo.DeleteBlacklistByVolunteer(ctx, actor.UserID, volunteerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.NotFound, Message: "blacklist entry not found"}
		}
		return err
	}
	return nil
}

// SubmitReview attaches a review to a volunteer for a completed request the
// caller owns and the volunteer actually offered on.
func (s *Service) SubmitReview(ctx context.Context, actor model.Actor, volunteerID, requestID int64, rating int, comment string) (model.Review, error) {
	if rating < 1 || rating > 5 {
		return model.Review{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "rating must be between 1 and 5"}
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Review{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "request not found"}
		}
		return model.Review{}, err
	}
	if req.RequesterID != actor.UserID {
		return model.Review{}, apiErrors.APIError{Code: apiErrors.Forbidden, Message: "not the request owner"}
	}
	if req.Status != model.RequestCompleted {
		return model.Review{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "request is not completed"}
	}
	if offered, err := s.repo.HasAcceptedOffer(ctx, requestID, volunteerID); err != nil {
		return model.Review{}, err
	} else if !offered {
		return model.Review{}, apiErrors.APIError{Code: apiErrors.Conflict, Message: "volunteer did not help on this request"}
	}

	review, err := s.repo.CreateReview(ctx, model.Review{
		PinID:       actor.UserID,
		VolunteerID: volunteerID,
		RequestID:   requestID,
		Rating:      rating,
		Comment:     comment,
	})
	if err != nil {
		return model.Review{}, err
	}
	s.audit(ctx, actor, "REVIEW_SUBMITTED", fmt.Sprintf("Submitted review for volunteer %d", volunteerID))
	return review, nil
}

// Reviews lists all reviews of a volunteer, independent of any shortlist or
// blacklist membership.
func (s *Service) Reviews(ctx context.Context, volunteerID int64) ([]model.Review, error) {
	return s.repo.ListReviews(ctx, volunteerID)
}
