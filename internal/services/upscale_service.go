package services

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/pratik-mahalle/upscaler/internal/domain/upscale"
	"github.com/pratik-mahalle/upscaler/internal/integrations"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
)

// RemoteFetcher loads a source image from an http(s) URL
type RemoteFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// UpscaleService implements upscale.Gateway
type UpscaleService struct {
	upstream upscale.Upstream
	fetcher  RemoteFetcher
	logger   *logger.Logger
}

// NewUpscaleService creates a new upscale gateway
func NewUpscaleService(upstream upscale.Upstream, fetcher RemoteFetcher, log *logger.Logger) upscale.Gateway {
	return &UpscaleService{
		upstream: upstream,
		fetcher:  fetcher,
		logger:   log,
	}
}

// Configured reports whether the upstream credential is present
func (s *UpscaleService) Configured() bool {
	return s.upstream != nil && s.upstream.Configured()
}

// Upscale loads the source image, sends it upstream with a square target of
// BaseSize × scale and returns the result as a PNG data URL
func (s *UpscaleService) Upscale(ctx context.Context, req upscale.Request) (*upscale.Result, error) {
	if !s.Configured() {
		s.logger.Error("Upscale API key is not configured")
		return nil, errors.ConfigurationError("Server configuration error")
	}

	if req.ImageURL == "" {
		return nil, errors.BadRequest("Image URL is required")
	}

	kind := classifySource(req.ImageURL)
	if kind == sourceInvalid {
		return nil, errors.BadRequest("Invalid image URL format")
	}

	scale := upscale.NormalizeScale(req.Scale)
	size := upscale.TargetSize(scale)

	sourceLabel := "remote"
	var (
		source []byte
		err    error
	)
	if kind == sourceDataURL {
		sourceLabel = "data"
		source, err = decodeDataURL(req.ImageURL)
	} else {
		source, err = s.fetcher.Fetch(ctx, req.ImageURL)
	}
	if err != nil {
		metrics.RecordUpscale("invalid_source", sourceLabel)
		s.logger.WithError(err).Warn("Failed to load source image")
		return nil, err
	}

	start := time.Now()
	out, err := s.upstream.Upscale(ctx, source, size, size)
	if err != nil {
		var statusErr *integrations.StatusError
		if stderrors.As(err, &statusErr) {
			metrics.RecordUpstreamError(statusErr.StatusCode)
			metrics.RecordUpscale("upstream_error", sourceLabel)
			s.logger.WithFields(map[string]interface{}{
				"status": statusErr.StatusCode,
				"body":   statusErr.Body,
			}).Warn("Upstream upscale failed")
			return nil, errors.UpstreamError(upstreamMessage(statusErr.StatusCode), statusErr.StatusCode, err)
		}
		metrics.RecordUpscale("error", sourceLabel)
		s.logger.ErrorWithErr(err, "Upstream upscale request failed")
		return nil, errors.Internal("Failed to upscale image", err)
	}

	if len(out) == 0 {
		metrics.RecordUpscale("empty_response", sourceLabel)
		return nil, errors.Internal("No image data received from upstream service", nil)
	}

	metrics.RecordUpstreamCall(time.Since(start), len(out))
	metrics.RecordUpscale("success", sourceLabel)

	s.logger.WithFields(map[string]interface{}{
		"scale":        scale,
		"size":         size,
		"input_bytes":  len(source),
		"output_bytes": len(out),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Image upscaled")

	return &upscale.Result{
		URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(out),
		Scale:  scale,
		Width:  size,
		Height: size,
		Bytes:  len(out),
	}, nil
}

// upstreamMessage maps an upstream status code to the caller-facing message
func upstreamMessage(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Authentication to upstream service failed"
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Please try again later."
	case http.StatusBadRequest:
		return "Invalid image or request for upscaling"
	default:
		return "Failed to upscale image"
	}
}
