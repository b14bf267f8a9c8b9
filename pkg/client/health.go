package client

import (
	"context"
	"net/http"
)

// Health checks the liveness of the API
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp envelope[HealthResponse]
	if err := c.doRequest(ctx, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Ready reports database and upstream readiness
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	var resp envelope[HealthResponse]
	if err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}
