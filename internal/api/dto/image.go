package dto

import (
	"time"

	"github.com/pratik-mahalle/upscaler/internal/domain/image"
)

// SaveImageRequest represents a request to record an upscale
type SaveImageRequest struct {
	UserID        string   `json:"userId"`
	OriginalURL   string   `json:"originalUrl"`
	UpscaledURL   string   `json:"upscaledUrl"`
	Scale         *float64 `json:"scale,omitempty"`
	FileSizeBytes *int64   `json:"fileSizeBytes,omitempty"`
}

// ToSaveInput converts the request to a service input. A zero scale is
// treated as absent.
func (r SaveImageRequest) ToSaveInput() image.SaveInput {
	in := image.SaveInput{
		UserID:        r.UserID,
		OriginalURL:   r.OriginalURL,
		UpscaledURL:   r.UpscaledURL,
		FileSizeBytes: r.FileSizeBytes,
	}
	if r.Scale != nil && *r.Scale != 0 {
		s := *r.Scale
		in.Scale = &s
	}
	if in.FileSizeBytes != nil && *in.FileSizeBytes == 0 {
		in.FileSizeBytes = nil
	}
	return in
}

// ImageDTO represents an image record in API responses
type ImageDTO struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	OriginalURL   string    `json:"originalUrl"`
	UpscaledURL   string    `json:"upscaledUrl"`
	Scale         float64   `json:"scale"`
	FileSizeBytes *int64    `json:"fileSizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SaveImageResponse represents a saved record
type SaveImageResponse struct {
	Success bool      `json:"success"`
	Image   *ImageDTO `json:"image"`
}

// ToImageDTO converts a record to its API form
func ToImageDTO(img *image.Image) *ImageDTO {
	return &ImageDTO{
		ID:            img.ID,
		UserID:        img.UserID,
		OriginalURL:   img.OriginalURL,
		UpscaledURL:   img.UpscaledURL,
		Scale:         img.Scale,
		FileSizeBytes: img.FileSizeBytes,
		CreatedAt:     img.CreatedAt,
	}
}

// ToImageDTOs converts a list of records
func ToImageDTOs(images []*image.Image) []*ImageDTO {
	out := make([]*ImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ToImageDTO(img))
	}
	return out
}
