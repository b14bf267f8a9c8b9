package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/domain/user"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
)

// AuthService implements user.Service with bcrypt password hashes
type AuthService struct {
	users    user.Repository
	profiles profile.Service
	cost     int
	logger   *logger.Logger
}

// NewAuthService creates a new account service. Every registered account
// gets a profile with the free credit grant.
func NewAuthService(users user.Repository, profiles profile.Service, bcryptCost int, log *logger.Logger) user.Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    users,
		profiles: profiles,
		cost:     bcryptCost,
		logger:   log,
	}
}

// Register creates an account and its profile
func (s *AuthService) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, errors.BadRequest("Email and password are required")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create account")
		return nil, err
	}

	if _, err := s.profiles.Create(ctx, u.ID, in.FirstName, in.LastName); err != nil {
		// The account exists; profile reads fall back to defaults until it is created
		s.logger.WithError(err).With("user_id", u.ID).Warn("Account created without profile")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("Account registered")

	return u, nil
}

// Authenticate checks an email and password pair
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password")
	}
	return u, nil
}

// GetByID retrieves an account by ID
func (s *AuthService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByEmail retrieves an account by email
func (s *AuthService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.users.GetByEmail(ctx, email)
}
