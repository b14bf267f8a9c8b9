package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// CreditBalance is a credit count, or "unlimited" for premium accounts
type CreditBalance struct {
	Value     int64
	Unlimited bool
}

func (b CreditBalance) String() string {
	if b.Unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(b.Value, 10)
}

// MarshalJSON implements json.Marshaler
func (b CreditBalance) MarshalJSON() ([]byte, error) {
	if b.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.FormatInt(b.Value, 10)), nil
}

// MarshalYAML renders the balance like MarshalJSON
func (b CreditBalance) MarshalYAML() (interface{}, error) {
	if b.Unlimited {
		return "unlimited", nil
	}
	return b.Value, nil
}

// UnmarshalJSON accepts a number or the string "unlimited"
func (b *CreditBalance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unlimited" {
			return fmt.Errorf("invalid credit balance %q", s)
		}
		*b = CreditBalance{Unlimited: true}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid credit balance: %w", err)
	}
	*b = CreditBalance{Value: n}
	return nil
}

// User is an account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         *User     `json:"user"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Session describes the current access token
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Profile is the credit and plan state of an account
type Profile struct {
	ID            string        `json:"id"`
	Credits       CreditBalance `json:"credits"`
	IsPremium     bool          `json:"isPremium"`
	TotalUpscales int64         `json:"totalUpscales"`
	FirstName     *string       `json:"firstName,omitempty"`
	LastName      *string       `json:"lastName,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Usage is the dashboard summary
type Usage struct {
	ImagesUpscaled   int64         `json:"imagesUpscaled"`
	CreditsRemaining CreditBalance `json:"creditsRemaining"`
	CreditsTotal     int64         `json:"creditsTotal"`
	Unlimited        bool          `json:"unlimited"`
}

// UpscaleRequest asks the gateway to upscale an image. A zero Scale lets
// the server pick its default.
type UpscaleRequest struct {
	ImageURL string  `json:"imageUrl"`
	Scale    float64 `json:"scale,omitempty"`
}

// UpscaleMeta describes the produced image
type UpscaleMeta struct {
	Scale  float64 `json:"scale"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// UpscaleResponse is the gateway result. URL is a data URL or a storage URL.
type UpscaleResponse struct {
	Success bool        `json:"success"`
	URL     string      `json:"url"`
	Meta    UpscaleMeta `json:"meta"`
}

// DeductCreditsResponse is the ledger result. TotalUpscales is nil for
// premium accounts.
type DeductCreditsResponse struct {
	Success       bool          `json:"success"`
	Credits       CreditBalance `json:"credits"`
	TotalUpscales *int64        `json:"totalUpscales,omitempty"`
	IsPremium     bool          `json:"isPremium"`
}

// SaveImageRequest records a finished upscale
type SaveImageRequest struct {
	UserID        string  `json:"userId"`
	OriginalURL   string  `json:"originalUrl"`
	UpscaledURL   string  `json:"upscaledUrl"`
	Scale         float64 `json:"scale,omitempty"`
	FileSizeBytes *int64  `json:"fileSizeBytes,omitempty"`
}

// Image is a stored upscale record
type Image struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	OriginalURL   string    `json:"originalUrl"`
	UpscaledURL   string    `json:"upscaledUrl"`
	Scale         float64   `json:"scale"`
	FileSizeBytes *int64    `json:"fileSizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListOptions contains common list parameters
type ListOptions struct {
	Page     int
	PageSize int
}

// ImageList is a page of image records
type ImageList struct {
	Images     []Image `json:"data"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalItems int64   `json:"total_items"`
	TotalPages int     `json:"total_pages"`
}

// HealthResponse is the liveness or readiness report
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Upstream string `json:"upstream,omitempty"`
}
