package image

import "context"

// Repository defines the interface for image record data access
type Repository interface {
	// Create inserts a new record
	Create(ctx context.Context, img *Image) error

	// ListByUser returns a user's records, newest first
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Image, int64, error)

	// Count returns the total number of records
	Count(ctx context.Context) (int64, error)
}
