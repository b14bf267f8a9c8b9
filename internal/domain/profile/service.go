package profile

import "context"

// Service defines the interface for profile and credit ledger logic
type Service interface {
	// GetByID retrieves a profile
	GetByID(ctx context.Context, id string) (*Profile, error)

	// Create creates the profile of a newly registered account
	Create(ctx context.Context, id string, firstName, lastName string) (*Profile, error)

	// DeductCredits charges amount credits. Premium profiles are never charged.
	DeductCredits(ctx context.Context, id string, amount int64) (*DeductResult, error)

	// Usage returns the dashboard summary for a profile
	Usage(ctx context.Context, id string) (*Usage, error)
}
