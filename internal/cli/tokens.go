package cli

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pratik-mahalle/upscaler/pkg/client"
)

const (
	keyAccessToken  = "auth.access_token"
	keyRefreshToken = "auth.refresh_token"
	keyExpiresAt    = "auth.expires_at"
)

// viperTokenStore keeps the token pair in the CLI config file
type viperTokenStore struct {
	v     *viper.Viper
	flush func() error
}

func newViperTokenStore(v *viper.Viper, flush func() error) *viperTokenStore {
	return &viperTokenStore{v: v, flush: flush}
}

func (s *viperTokenStore) Load() (*client.Tokens, error) {
	access := s.v.GetString(keyAccessToken)
	if access == "" {
		return nil, nil
	}
	t := &client.Tokens{
		AccessToken:  access,
		RefreshToken: s.v.GetString(keyRefreshToken),
	}
	if exp := s.v.GetString(keyExpiresAt); exp != "" {
		t.ExpiresAt, _ = time.Parse(time.RFC3339, exp)
	}
	return t, nil
}

func (s *viperTokenStore) Save(t *client.Tokens) error {
	s.v.Set(keyAccessToken, t.AccessToken)
	s.v.Set(keyRefreshToken, t.RefreshToken)
	exp := ""
	if !t.ExpiresAt.IsZero() {
		exp = t.ExpiresAt.UTC().Format(time.RFC3339)
	}
	s.v.Set(keyExpiresAt, exp)
	return s.flush()
}

func (s *viperTokenStore) Clear() error {
	s.v.Set(keyAccessToken, "")
	s.v.Set(keyRefreshToken, "")
	s.v.Set(keyExpiresAt, "")
	return s.flush()
}
