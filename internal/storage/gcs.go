package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/pratik-mahalle/upscaler/internal/config"
)

// GCSStore writes objects to a Google Cloud Storage bucket
type GCSStore struct {
	client    *gcs.Client
	bucket    string
	publicURL string
}

// NewGCS creates a GCS store using CredentialsFile when set, otherwise
// application default credentials
func NewGCS(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	fallback := fmt.Sprintf("https://storage.googleapis.com/%s", cfg.Bucket)
	return &GCSStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL(cfg.PublicURL, fallback, ""),
	}, nil
}

// Put streams data through an object writer
func (s *GCSStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write gcs object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gcs object %s: %w", key, err)
	}
	return s.publicURL + key, nil
}

// Name returns "gcs"
func (s *GCSStore) Name() string { return "gcs" }

// Close releases the underlying client
func (s *GCSStore) Close() error { return s.client.Close() }
