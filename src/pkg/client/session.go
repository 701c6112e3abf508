package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/karehub/volunteer-match-service/src/internal/model"
)

// tokenStore holds the session token, mirrored to a file so a session
// survives process restarts.
type tokenStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

func newTokenStore(path string) (*tokenStore, error) {
	s := &tokenStore{path: path}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	s.token = string(raw)
	return s, nil
}

func (s *tokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *tokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.path == "" {
		return nil
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *tokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type session struct {
	Token string     `json:"access_token"`
	User  model.User `json:"user"`
}

type RegisterInput struct {
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	Role        model.Role `json:"role,omitempty"`
	FullName    string     `json:"full_name,omitempty"`
	CompanyName string     `json:"company_name,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	var out session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return model.User{}, err
	}
	if err := c.store.Set(out.Token); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	body := map[string]string{"email": email, "password": password}
	var out session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return model.User{}, err
	}
	if err := c.store.Set(out.Token); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

// Logout drops the session locally. The server holds no session state.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// RestoreSession validates a previously persisted token. A rejected token is
// cleared so the client reverts to anonymous.
func (c *Client) RestoreSession(ctx context.Context) (model.User, error) {
	if c.store.Token() == "" {
		return model.User{}, &APIError{Status: http.StatusUnauthorized, Message: "no stored session"}
	}
	var out struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			_ = c.store.Clear()
		}
		return model.User{}, err
	}
	return out.User, nil
}

// RequestPasswordReset asks for a reset token. The token comes back only
// when the server runs with reset-token exposure enabled.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (token string, err error) {
	body := map[string]string{"email": email}
	var out struct {
		ResetToken string `json:"reset_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", body, &out); err != nil {
		return "", err
	}
	return out.ResetToken, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "password": newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", body, nil)
}
