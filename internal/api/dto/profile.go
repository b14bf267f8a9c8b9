package dto

import (
	"time"

	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
)

// ProfileDTO represents a profile in API responses
type ProfileDTO struct {
	ID            string        `json:"id"`
	Credits       CreditBalance `json:"credits" swaggertype:"primitive,string"`
	IsPremium     bool          `json:"isPremium"`
	TotalUpscales int64         `json:"totalUpscales"`
	FirstName     *string       `json:"firstName,omitempty"`
	LastName      *string       `json:"lastName,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// UsageDTO is the dashboard summary
type UsageDTO struct {
	ImagesUpscaled   int64         `json:"imagesUpscaled"`
	CreditsRemaining CreditBalance `json:"creditsRemaining" swaggertype:"primitive,string"`
	CreditsTotal     int64         `json:"creditsTotal"`
	Unlimited        bool          `json:"unlimited"`
}

// ToProfileDTO converts a profile to its API form
func ToProfileDTO(p *profile.Profile) *ProfileDTO {
	return &ProfileDTO{
		ID:            p.ID,
		Credits:       CreditBalance{Value: p.Credits, Unlimited: p.IsPremium},
		IsPremium:     p.IsPremium,
		TotalUpscales: p.TotalUpscales,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		CreatedAt:     p.CreatedAt,
	}
}

// ToUsageDTO converts a usage summary to its API form
func ToUsageDTO(u *profile.Usage) *UsageDTO {
	return &UsageDTO{
		ImagesUpscaled:   u.ImagesUpscaled,
		CreditsRemaining: CreditBalance{Value: u.CreditsRemaining, Unlimited: u.Unlimited},
		CreditsTotal:     u.CreditsTotal,
		Unlimited:        u.Unlimited,
	}
}
