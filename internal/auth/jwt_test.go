package auth

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	pair, err := MintTokens("user-1", "a@b.co", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if pair.ExpiresAt.Before(time.Now()) {
		t.Error("ExpiresAt is in the past")
	}

	tests := []struct {
		name      string
		token     string
		secret    string
		tokenType string
		wantErr   bool
	}{
		{name: "access token", token: pair.AccessToken, secret: "secret", tokenType: TokenTypeAccess},
		{name: "refresh token", token: pair.RefreshToken, secret: "secret", tokenType: TokenTypeRefresh},
		{name: "refresh used as access", token: pair.RefreshToken, secret: "secret", tokenType: TokenTypeAccess, wantErr: true},
		{name: "wrong secret", token: pair.AccessToken, secret: "other", tokenType: TokenTypeAccess, wantErr: true},
		{name: "garbage", token: "not.a.token", secret: "secret", tokenType: TokenTypeAccess, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseTyped(tt.token, tt.secret, tt.tokenType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTyped() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (c.UserID != "user-1" || c.Subject != "user-1" || c.Email != "a@b.co") {
				t.Errorf("ParseTyped() claims = %+v", c)
			}
		})
	}
}

func TestParseClaims_Expired(t *testing.T) {
	pair, err := MintTokens("user-1", "a@b.co", "secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if _, err := ParseClaims(pair.AccessToken, "secret"); err == nil {
		t.Error("ParseClaims() accepted an expired token")
	}
}
