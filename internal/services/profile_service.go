package services

import (
	"context"

	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
)

// ProfileService implements profile.Service
type ProfileService struct {
	repo        profile.Repository
	freeCredits int64
	logger      *logger.Logger
}

// NewProfileService creates a new profile service. freeCredits is the
// balance granted to new profiles.
func NewProfileService(repo profile.Repository, freeCredits int64, log *logger.Logger) profile.Service {
	return &ProfileService{
		repo:        repo,
		freeCredits: freeCredits,
		logger:      log,
	}
}

// GetByID retrieves a profile
func (s *ProfileService) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	if id == "" {
		return nil, errors.BadRequest("User ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Create creates the profile of a newly registered account
func (s *ProfileService) Create(ctx context.Context, id string, firstName, lastName string) (*profile.Profile, error) {
	p := &profile.Profile{
		ID:      id,
		Credits: s.freeCredits,
	}
	if firstName != "" {
		p.FirstName = &firstName
	}
	if lastName != "" {
		p.LastName = &lastName
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create profile")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": id,
		"credits": p.Credits,
	}).Info("Profile created")

	return p, nil
}

// DeductCredits charges amount credits. The balance is only ever changed by
// the repository's conditional update; when it matches no row the profile is
// re-read to tell a missing profile, a premium profile and a short balance apart.
func (s *ProfileService) DeductCredits(ctx context.Context, id string, amount int64) (*profile.DeductResult, error) {
	if id == "" {
		return nil, errors.BadRequest("User ID is required")
	}
	if amount < 1 {
		return nil, errors.BadRequest("Amount must be a positive integer")
	}

	credits, total, ok, err := s.repo.DeductCredits(ctx, id, amount)
	if err != nil {
		metrics.RecordDeduction("error", amount)
		s.logger.ErrorWithErr(err, "Failed to update credits")
		return nil, errors.DatabaseError("Failed to update credits", err)
	}
	if ok {
		metrics.RecordDeduction("charged", amount)
		s.logger.WithFields(map[string]interface{}{
			"user_id":   id,
			"amount":    amount,
			"remaining": credits,
		}).Info("Credits deducted")
		return &profile.DeductResult{Credits: credits, TotalUpscales: total}, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			metrics.RecordDeduction("not_found", amount)
			return nil, errors.NotFound("User profile")
		}
		metrics.RecordDeduction("error", amount)
		s.logger.ErrorWithErr(err, "Failed to fetch profile")
		return nil, errors.Internal("Internal server error", err)
	}

	if p.IsPremium {
		metrics.RecordDeduction("premium", amount)
		return &profile.DeductResult{
			Credits:       p.Credits,
			TotalUpscales: p.TotalUpscales,
			IsPremium:     true,
			Unlimited:     true,
		}, nil
	}

	metrics.RecordDeduction("insufficient", amount)
	return nil, errors.PaymentRequired("Insufficient credits", p.Credits)
}

// Usage returns the dashboard summary for a profile
func (s *ProfileService) Usage(ctx context.Context, id string) (*profile.Usage, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &profile.Usage{
		ImagesUpscaled:   p.TotalUpscales,
		CreditsRemaining: p.Credits,
		CreditsTotal:     s.freeCredits,
		Unlimited:        p.IsPremium,
	}, nil
}
