// Package storage offloads upscaled images to a blob store so image records
// hold a short object URL instead of a multi-megabyte data URL.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/upscaler/internal/config"
)

// Store writes objects to a bucket
type Store interface {
	// Put uploads data under key and returns its public URL
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)

	// Name identifies the backend, for logs and metrics
	Name() string

	Close() error
}

// New builds the backend selected by cfg.Driver. It returns nil, nil when
// storage is disabled.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "s3":
		return NewS3(ctx, cfg)
	case "gcs":
		return NewGCS(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// ObjectKey builds the key of an upscaled image
func ObjectKey(prefix, userID, imageID, ext string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%s%s/%s%s", prefix, userID, imageID, ext)
}

// publicURL joins base and key. base defaults to the backend's URL.
func publicURL(base, fallback, key string) string {
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/") + "/" + key
}
