package upscale

import "context"

// Gateway forwards images to the upstream upscaling API
type Gateway interface {
	// Configured reports whether the upstream credential is present
	Configured() bool

	// Upscale validates the request, loads the source image and returns the
	// upscaled result
	Upscale(ctx context.Context, req Request) (*Result, error)
}

// Upstream is the third-party upscaling API
type Upstream interface {
	Configured() bool
	Upscale(ctx context.Context, image []byte, width, height int) ([]byte, error)
}
