package services

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pratik-mahalle/upscaler/internal/domain/image"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
	"github.com/pratik-mahalle/upscaler/internal/storage"
)

// ImageService implements image.Service
type ImageService struct {
	repo   image.Repository
	store  storage.Store
	prefix string
	logger *logger.Logger
}

// NewImageService creates a new image record service. store may be nil, in
// which case upscaled URLs are stored verbatim.
func NewImageService(repo image.Repository, store storage.Store, prefix string, log *logger.Logger) image.Service {
	return &ImageService{
		repo:   repo,
		store:  store,
		prefix: prefix,
		logger: log,
	}
}

// Save validates and stores a new record
func (s *ImageService) Save(ctx context.Context, in image.SaveInput) (*image.Image, error) {
	if in.UserID == "" || in.OriginalURL == "" || in.UpscaledURL == "" {
		return nil, errors.BadRequest("Missing required fields")
	}

	img := &image.Image{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		OriginalURL:   in.OriginalURL,
		UpscaledURL:   in.UpscaledURL,
		Scale:         image.DefaultScale,
		FileSizeBytes: in.FileSizeBytes,
	}
	if in.Scale != nil {
		img.Scale = *in.Scale
	}

	backend := "inline"
	if s.store != nil && strings.HasPrefix(img.UpscaledURL, "data:") {
		if url, err := s.offload(ctx, img); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"image_id": img.ID,
				"storage":  s.store.Name(),
			}).Warn("Failed to offload upscaled image, storing inline")
		} else {
			img.UpscaledURL = url
			backend = s.store.Name()
		}
	}

	if err := s.repo.Create(ctx, img); err != nil {
		s.logger.ErrorWithErr(err, "Failed to save image record")
		return nil, errors.DatabaseError("Failed to save image record", err)
	}

	metrics.RecordImageSaved(backend)
	s.logger.WithFields(map[string]interface{}{
		"image_id": img.ID,
		"user_id":  img.UserID,
		"scale":    img.Scale,
		"storage":  backend,
	}).Info("Image record saved")

	return img, nil
}

// offload uploads a data URL payload and returns the object URL
func (s *ImageService) offload(ctx context.Context, img *image.Image) (string, error) {
	data, err := decodeDataURL(img.UpscaledURL)
	if err != nil {
		return "", err
	}

	// Trust the bytes over the declared media type
	contentType, ext := dataURLMediaType(img.UpscaledURL), ".png"
	if m := mimetype.Detect(data); strings.HasPrefix(m.String(), "image/") {
		contentType, ext = m.String(), m.Extension()
	} else if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}

	key := storage.ObjectKey(s.prefix, img.UserID, img.ID, ext)
	url, err := s.store.Put(ctx, key, contentType, data)
	if err != nil {
		return "", errors.StorageError("Failed to upload image", err)
	}
	return url, nil
}

// ListByUser returns a page of a user's history
func (s *ImageService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*image.Image, int64, error) {
	if userID == "" {
		return nil, 0, errors.BadRequest("User ID is required")
	}
	images, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if images == nil {
		images = []*image.Image{}
	}
	return images, total, nil
}

// dataURLMediaType returns the media type of a data URL, image/png when absent
func dataURLMediaType(s string) string {
	header := strings.TrimPrefix(s, "data:")
	if idx := strings.IndexAny(header, ";,"); idx >= 0 {
		header = header[:idx]
	}
	if header == "" {
		return "image/png"
	}
	return header
}
