package client

import (
	"context"
	"net/http"
)

// Upscale sends an image to the upscale gateway
func (c *Client) Upscale(ctx context.Context, req UpscaleRequest) (*UpscaleResponse, error) {
	var resp UpscaleResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/upscale", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
