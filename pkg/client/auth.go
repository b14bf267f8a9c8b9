package client

import (
	"context"
	"net/http"
)

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp envelope[AuthResponse]
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}

	// Automatically set the token for future requests
	if resp.Data.AccessToken != "" {
		c.SetToken(resp.Data.AccessToken)
	}

	return &resp.Data, nil
}

// Register creates a new account and its profile
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp envelope[AuthResponse]
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}

	if resp.Data.AccessToken != "" {
		c.SetToken(resp.Data.AccessToken)
	}

	return &resp.Data, nil
}

// GetSession returns the session behind the current token
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	var resp envelope[Session]
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/session", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Logout logs out the current user
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// RefreshToken exchanges a refresh token for a new token pair
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	req := map[string]string{
		"refreshToken": refreshToken,
	}

	var resp envelope[AuthResponse]
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", req, &resp); err != nil {
		return nil, err
	}

	if resp.Data.AccessToken != "" {
		c.SetToken(resp.Data.AccessToken)
	}

	return &resp.Data, nil
}
