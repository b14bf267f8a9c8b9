package profile

import "context"

// Repository defines the interface for profile data access
type Repository interface {
	// Create inserts a new profile
	Create(ctx context.Context, p *Profile) error

	// GetByID retrieves a profile by user ID
	GetByID(ctx context.Context, id string) (*Profile, error)

	// DeductCredits subtracts amount from a non-premium profile whose balance
	// covers it and increments total_upscales, as one conditional statement.
	// ok is false when no row matched; the caller decides why.
	DeductCredits(ctx context.Context, id string, amount int64) (credits, totalUpscales int64, ok bool, err error)

	// Stats returns aggregate counters over all profiles
	Stats(ctx context.Context) (*Stats, error)
}
