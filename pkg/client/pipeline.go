package client

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultScale is used when UpscaleImageInput.Scale is zero
const DefaultScale = 2

// UpscaleImageInput describes one pipeline run. With an empty UserID the
// credit and history steps are skipped.
type UpscaleImageInput struct {
	ImageURL      string
	Scale         float64
	UserID        string
	FileSizeBytes *int64
}

// UpscaleOutcome is the pipeline result. Failures are reported through
// Error, never as a Go error.
type UpscaleOutcome struct {
	Success bool
	URL     string
	Scale   float64
	Width   int
	Height  int
	Error   string
	Credits *int64 // balance reported by a 402
}

// UpscaleImage deducts a credit, upscales and records the result
func (c *Client) UpscaleImage(ctx context.Context, in UpscaleImageInput) UpscaleOutcome {
	scale := in.Scale
	if scale == 0 {
		scale = DefaultScale
	}

	if in.UserID != "" {
		if _, err := c.DeductCredits(ctx, in.UserID, 1); err != nil {
			return creditFailure(err)
		}
	}

	resp, err := c.Upscale(ctx, UpscaleRequest{ImageURL: in.ImageURL, Scale: scale})
	if err != nil {
		return upscaleFailure(err)
	}
	if resp.URL == "" {
		return UpscaleOutcome{Error: "No upscaled image URL returned from server"}
	}

	if in.UserID != "" {
		_, err := c.SaveImage(ctx, SaveImageRequest{
			UserID:        in.UserID,
			OriginalURL:   in.ImageURL,
			UpscaledURL:   resp.URL,
			Scale:         scale,
			FileSizeBytes: in.FileSizeBytes,
		})
		if err != nil {
			c.logger.ErrorWithErr(err, "Failed to save image record")
		}
	}

	return UpscaleOutcome{
		Success: true,
		URL:     resp.URL,
		Scale:   resp.Meta.Scale,
		Width:   resp.Meta.Width,
		Height:  resp.Meta.Height,
	}
}

func creditFailure(err error) UpscaleOutcome {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return networkFailure(err)
	}
	if apiErr.IsPaymentRequired() {
		return UpscaleOutcome{
			Error:   "Insufficient credits. Please upgrade to premium or purchase more credits.",
			Credits: apiErr.Credits,
		}
	}
	if apiErr.Message != "" {
		return UpscaleOutcome{Error: apiErr.Message}
	}
	return UpscaleOutcome{Error: "Failed to process credits"}
}

func upscaleFailure(err error) UpscaleOutcome {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return networkFailure(err)
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return UpscaleOutcome{Error: "Invalid or expired API key. Please check your upscaler API configuration."}
	case apiErr.IsRateLimited():
		return UpscaleOutcome{Error: "Rate limit exceeded. Please wait a moment and try again."}
	case apiErr.Message != "":
		return UpscaleOutcome{Error: apiErr.Message}
	}
	return UpscaleOutcome{Error: fmt.Sprintf("API Error: %d", apiErr.StatusCode)}
}

func networkFailure(err error) UpscaleOutcome {
	return UpscaleOutcome{Error: "Network error: " + err.Error()}
}
