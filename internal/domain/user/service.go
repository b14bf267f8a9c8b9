package user

import "context"

// Service defines the interface for account logic
type Service interface {
	// Register creates an account and its profile
	Register(ctx context.Context, in RegisterInput) (*User, error)

	// Authenticate checks an email and password pair
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves an account by email
	GetByEmail(ctx context.Context, email string) (*User, error)
}
