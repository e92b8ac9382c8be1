package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
)

// Me fetches the profile bound to token (GET /auth/me).
func (c *Client) Me(ctx context.Context, token string) (*domain.UserProfile, error) {
	var user domain.UserProfile
	err := c.do(ctx, request{
		op:     "auth.me",
		method: http.MethodGet,
		path:   "/auth/me",
		token:  token,
		out:    &user,
	})
	if err != nil {
		return nil, translate("auth.me", err)
	}
	if user.ID == "" {
		return nil, &domain.ErrNetwork{Operation: "auth.me", Err: errors.New("malformed profile response")}
	}
	return &user, nil
}

// Login exchanges credentials for a token (POST /auth/{tenantId}/login).
// 400/401/404 mean bad credentials or unknown tenant and become ErrAuth.
func (c *Client) Login(ctx context.Context, tenantID domain.TenantID, req *domain.LoginRequest) (*domain.AuthResult, error) {
	var result domain.AuthResult
	err := c.do(ctx, request{
		op:     "auth.login",
		method: http.MethodPost,
		path:   fmt.Sprintf("/auth/%s/login", url.PathEscape(tenantID.String())),
		body:   req,
		out:    &result,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
				return nil, &domain.ErrAuth{Message: authMessage(apiErr, "Credenciais inválidas")}
			}
		}
		return nil, translate("auth.login", err)
	}
	if result.Token == "" || result.User.ID == "" {
		return nil, &domain.ErrNetwork{Operation: "auth.login", Err: errors.New("malformed login response")}
	}
	return &result, nil
}

// Register creates an account and returns token + user (POST /auth/register).
func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error) {
	var result domain.AuthResult
	err := c.do(ctx, request{
		op:     "auth.register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
		out:    &result,
	})
	if err != nil {
		return nil, translate("auth.register", err)
	}
	if result.Token == "" || result.User.ID == "" {
		return nil, &domain.ErrNetwork{Operation: "auth.register", Err: errors.New("malformed register response")}
	}
	return &result, nil
}

// UpdateMe sends a partial profile update and returns the authoritative
// profile (PUT /auth/me).
func (c *Client) UpdateMe(ctx context.Context, token string, patch *domain.ProfilePatch) (*domain.UserProfile, error) {
	var user domain.UserProfile
	err := c.do(ctx, request{
		op:     "auth.update_me",
		method: http.MethodPut,
		path:   "/auth/me",
		token:  token,
		body:   patch,
		out:    &user,
	})
	if err != nil {
		return nil, translate("auth.update_me", err)
	}
	if user.ID == "" {
		return nil, &domain.ErrNetwork{Operation: "auth.update_me", Err: errors.New("malformed profile response")}
	}
	return &user, nil
}

func authMessage(apiErr *APIError, fallback string) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
