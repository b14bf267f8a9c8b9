package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// SaveImage records a finished upscale
func (c *Client) SaveImage(ctx context.Context, req SaveImageRequest) (*Image, error) {
	var resp struct {
		Success bool   `json:"success"`
		Image   *Image `json:"image"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/images/save", req, &resp); err != nil {
		return nil, err
	}
	return resp.Image, nil
}

// ListImages returns the caller's upscale history, newest first
func (c *Client) ListImages(ctx context.Context, opts *ListOptions) (*ImageList, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/images"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var list ImageList
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
