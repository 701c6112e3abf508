package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/karehub/volunteer-match-service/src/internal/api/apiErrors"
	"github.com/karehub/volunteer-match-service/src/internal/model"
)

func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "user not found"}
		}
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (model.UserProfile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.UserProfile{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "profile not found"}
		}
		return model.UserProfile{}, err
	}
	return p, nil
}

type UpdateUserInput struct {
	Email    *string
	Username *string
}

// UpdateUser changes a user's own account fields. Users edit themselves;
// anyone with the manage-users capability can edit anybody.
func (s *Service) UpdateUser(ctx context.Context, actor model.Actor, id int64, in UpdateUserInput) (model.User, error) {
	if actor.UserID != id && !actor.Role.Can(model.CapManageUsers) {
		return model.User{}, apiErrors.APIError{Code: apiErrors.Forbidden, Message: "cannot modify another user"}
	}

	user, err := s.repo.UpdateUserFields(ctx, id, in.Email, in.Username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "user not found"}
		}
		return model.User{}, err
	}
	s.audit(ctx, actor, "USER_UPDATED", fmt.Sprintf("Updated user %d", id))
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actor model.Actor, id int64) error {
	if actor.UserID != id && !actor.Role.Can(model.CapManageUsers) {
		return apiErrors.APIError{Code: apiErrors.Forbidden, Message: "cannot delete another user"}
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.APIError{Code: apiErrors.NotFound, Message: "user not found"}
		}
		return err
	}
	s.audit(ctx, actor, "USER_DELETED", fmt.Sprintf("Deleted user %d", id))
	return nil
}

func (s *Service) AssignRole(ctx context.Context, actor model.Actor, id int64, role model.Role) (model.User, error) {
	if !model.ValidRole(role) {
		return model.User{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "unknown role"}
	}

	before, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "user not found"}
		}
		return model.User{}, err
	}

	user, err := s.repo.AssignRole(ctx, id, role)
	if err != nil {
		return model.User{}, err
	}
	s.audit(ctx, actor, "ROLE_ASSIGNED",
		fmt.Sprintf("Changed role of user %d from %s to %s", id, before.Role, role))
	return user, nil
}

func (s *Service) DeactivateUser(ctx context.Context, actor model.Actor, id int64) (model.User, error) {
	user, err := s.repo.SetUserActive(ctx, id, false)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apiErrors.APIError{Code: apiErrors.NotFound, Message: "user not found"}
		}
		return model.User{}, err
	}
	s.audit(ctx, actor, "USER_DEACTIVATED", fmt.Sprintf("Deactivated user %d", id))
	return user, nil
}

func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	return s.repo.GetStats(ctx)
}

// ExportUsersCSV renders the full user list as CSV and returns it with a
// timestamped filename.
func (s *Service) ExportUsersCSV(ctx context.Context, actor model.Actor) (filename string, data []byte, err error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ID", "Username", "Email", "Role", "Active", "Created At"})
	for _, u := range users {
		_ = w.Write([]string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.Email,
			string(u.Role),
			strconv.FormatBool(u.IsActive),
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	s.audit(ctx, actor, "EXPORT_USERS", fmt.Sprintf("Exported %d users to CSV", len(users)))
	filename = fmt.Sprintf("users_export_%s.csv", time.Now().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, actor model.Actor, name, description string) (model.Category, error) {
	if name == "" {
		return model.Category{}, apiErrors.APIError{Code: apiErrors.Validation, Message: "name required"}
	}
	cat, err := s.repo.CreateCategory(ctx, name, description)
	if err != nil {
		return model.Category{}, err
	}
	s.audit(ctx, actor, "CATEGORY_CREATED", fmt.Sprintf("Created category %q", name))
	return cat, nil
}
