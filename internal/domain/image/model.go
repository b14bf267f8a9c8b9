package image

import "time"

// DefaultScale is applied when a record is saved without a scale
const DefaultScale = 2

// Image is a persisted upscale result. Records are insert-only.
type Image struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	OriginalURL   string    `json:"originalUrl"`
	UpscaledURL   string    `json:"upscaledUrl"`
	Scale         float64   `json:"scale"`
	FileSizeBytes *int64    `json:"fileSizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SaveInput holds the fields accepted when recording an upscale
type SaveInput struct {
	UserID        string
	OriginalURL   string
	UpscaledURL   string
	Scale         *float64
	FileSizeBytes *int64
}
