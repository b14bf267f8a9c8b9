package user

import "time"

// User is an account that can sign in. Credits and names live on the
// profile with the same ID.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterInput holds the fields accepted at sign-up
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}
