package image

import "context"

// Service defines the interface for image record logic
type Service interface {
	// Save validates and stores a new record
	Save(ctx context.Context, in SaveInput) (*Image, error)

	// ListByUser returns a page of a user's history
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Image, int64, error)
}
