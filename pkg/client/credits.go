package client

import (
	"context"
	"net/http"
)

// DeductCredits spends amount credits of userID. An amount below 1 lets the
// server apply its default of one credit.
func (c *Client) DeductCredits(ctx context.Context, userID string, amount int64) (*DeductCreditsResponse, error) {
	req := struct {
		UserID string `json:"userId"`
		Amount *int64 `json:"amount,omitempty"`
	}{UserID: userID}
	if amount > 0 {
		req.Amount = &amount
	}

	var resp DeductCreditsResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/credits/deduct", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
