package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
)

// unlimitedCredits is the JSON value reported for premium balances
const unlimitedCredits = "unlimited"

// CreditBalance renders as a number, or as the string "unlimited" for premium
// profiles.
type CreditBalance struct {
	Value     int64
	Unlimited bool
}

// MarshalJSON implements json.Marshaler
func (c CreditBalance) MarshalJSON() ([]byte, error) {
	if c.Unlimited {
		return json.Marshal(unlimitedCredits)
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *CreditBalance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != unlimitedCredits {
			return fmt.Errorf("invalid credit balance %q", s)
		}
		*c = CreditBalance{Unlimited: true}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = CreditBalance{Value: v}
	return nil
}

// DeductCreditsRequest represents a credit deduction request.
// Amount defaults to 1 when omitted.
type DeductCreditsRequest struct {
	UserID string `json:"userId"`
	Amount *int64 `json:"amount,omitempty"`
}

// DeductCreditsResponse represents a successful deduction
type DeductCreditsResponse struct {
	Success       bool          `json:"success"`
	Credits       CreditBalance `json:"credits" swaggertype:"primitive,string"`
	TotalUpscales *int64        `json:"totalUpscales,omitempty"`
	IsPremium     bool          `json:"isPremium"`
}

// InsufficientCreditsResponse documents the 402 body
type InsufficientCreditsResponse struct {
	Error   string `json:"error"`
	Credits int64  `json:"credits"`
}

// ToDeductCreditsResponse converts a ledger result to its API form
func ToDeductCreditsResponse(res *profile.DeductResult) DeductCreditsResponse {
	if res.Unlimited {
		return DeductCreditsResponse{
			Success:   true,
			Credits:   CreditBalance{Unlimited: true},
			IsPremium: true,
		}
	}
	total := res.TotalUpscales
	return DeductCreditsResponse{
		Success:       true,
		Credits:       CreditBalance{Value: res.Credits},
		TotalUpscales: &total,
		IsPremium:     false,
	}
}
