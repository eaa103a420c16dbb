package portal

import (
	"context"
	"net/http"

	"onboarding_portal/internal/model"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	OrganizationName string `json:"organization_name"`
}

// AuthResponse is returned by both login and registration.
type AuthResponse struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: creds}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: reg}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the identity behind the session's credential.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Do(ctx, Request{Path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Do(ctx, Request{Path: "/auth/users"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}
