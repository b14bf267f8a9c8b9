package integrations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// DefaultClipdropURL is the image upscaling endpoint
const DefaultClipdropURL = "https://clipdrop-api.co/image-upscaling/v1/upscale"

// StatusError is returned when the upstream API answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream request failed with status %d: %s", e.StatusCode, e.Body)
}

// ClipdropClient is a client for the Clipdrop image upscaling API
type ClipdropClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewClipdropClient creates a new Clipdrop API client. An empty url selects
// DefaultClipdropURL.
func NewClipdropClient(apiKey, url string, timeout time.Duration) *ClipdropClient {
	if url == "" {
		url = DefaultClipdropURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ClipdropClient{
		apiKey: apiKey,
		url:    url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether an API key is set
func (c *ClipdropClient) Configured() bool {
	return c.apiKey != ""
}

// Upscale sends image as a multipart form and returns the raw upscaled bytes.
// A non-2xx answer is returned as *StatusError.
func (c *ClipdropClient) Upscale(ctx context.Context, image []byte, width, height int) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("clipdrop API key is not configured")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("image_file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := form.WriteField("target_width", strconv.Itoa(width)); err != nil {
		return nil, fmt.Errorf("failed to write target_width: %w", err)
	}
	if err := form.WriteField("target_height", strconv.Itoa(height)); err != nil {
		return nil, fmt.Errorf("failed to write target_height: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
