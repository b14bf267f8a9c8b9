package profile

import "time"

// DefaultFreeCredits is the balance granted to a new account, and the value
// assumed when a profile row has not been created yet.
const DefaultFreeCredits int64 = 10

// Profile is the per-user credit and identity record
type Profile struct {
	ID            string    `json:"id"`
	Credits       int64     `json:"credits"`
	IsPremium     bool      `json:"isPremium"`
	TotalUpscales int64     `json:"totalUpscales"`
	FirstName     *string   `json:"firstName,omitempty"`
	LastName      *string   `json:"lastName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DeductResult is the outcome of a successful credit deduction.
// Unlimited is set for premium users, in which case Credits is meaningless.
type DeductResult struct {
	Credits       int64
	TotalUpscales int64
	IsPremium     bool
	Unlimited     bool
}

// Usage summarises a profile for the dashboard
type Usage struct {
	ImagesUpscaled   int64 `json:"imagesUpscaled"`
	CreditsRemaining int64 `json:"creditsRemaining"`
	CreditsTotal     int64 `json:"creditsTotal"`
	Unlimited        bool  `json:"unlimited"`
}

// Stats are aggregate counters used by the metrics job
type Stats struct {
	Profiles           int64
	PremiumProfiles    int64
	CreditsOutstanding int64
}
