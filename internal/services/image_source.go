package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
)

type sourceKind int

const (
	sourceInvalid sourceKind = iota
	sourceDataURL
	sourceRemote
)

// classifySource decides how an image source is loaded
func classifySource(s string) sourceKind {
	if strings.HasPrefix(s, "data:") {
		return sourceDataURL
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return sourceInvalid
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return sourceRemote
	}
	return sourceInvalid
}

// decodeDataURL returns the bytes after the first comma of a base64 data URL.
// Padded, unpadded and URL-safe alphabets are accepted.
func decodeDataURL(s string) ([]byte, error) {
	idx := strings.IndexByte(s, ',')
	if idx < 0 || idx == len(s)-1 {
		return nil, errors.BadRequest("Invalid data URL format")
	}
	payload := strings.TrimSpace(s[idx+1:])

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(payload); err == nil && len(b) > 0 {
			return b, nil
		}
	}
	return nil, errors.BadRequest("Invalid data URL format")
}

// ImageFetcher downloads remote source images
type ImageFetcher struct {
	client  *http.Client
	maxSize int64
}

// NewImageFetcher creates a fetcher bounded by timeout and maxSize bytes
func NewImageFetcher(timeout time.Duration, maxSize int64) *ImageFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ImageFetcher{
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
	}
}

// Fetch GETs rawURL and returns the body
func (f *ImageFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "Failed to fetch image from URL", http.StatusBadRequest)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "Failed to fetch image from URL", http.StatusBadRequest)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrap(fmt.Errorf("remote responded %d", resp.StatusCode),
			errors.ErrCodeBadRequest, "Failed to fetch image from URL", http.StatusBadRequest)
	}

	var body io.Reader = resp.Body
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "Failed to fetch image from URL", http.StatusBadRequest)
	}

	if len(data) == 0 || (f.maxSize > 0 && int64(len(data)) > f.maxSize) {
		return nil, errors.BadRequest("Fetched image is empty or invalid")
	}
	return data, nil
}
