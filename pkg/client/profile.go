package client

import (
	"context"
	"net/http"
)

// GetProfile returns the caller's profile
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var resp envelope[Profile]
	if err := c.doRequest(ctx, http.MethodGet, "/api/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetUsage returns the caller's dashboard summary
func (c *Client) GetUsage(ctx context.Context) (*Usage, error) {
	var resp envelope[Usage]
	if err := c.doRequest(ctx, http.MethodGet, "/api/profile/usage", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
