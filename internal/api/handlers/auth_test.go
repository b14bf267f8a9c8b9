package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/auth"
	"github.com/pratik-mahalle/upscaler/internal/config"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/validator"
	"github.com/pratik-mahalle/upscaler/internal/services"
	"github.com/pratik-mahalle/upscaler/internal/testutil"
)

const testSecret = "handler-test-secret"

type authFixture struct {
	handler  *AuthHandler
	users    *testutil.MockUserRepository
	profiles *testutil.MockProfileRepository
}

func newAuthFixture() *authFixture {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          testSecret,
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
	}
	log := logger.Nop()
	users := testutil.NewMockUserRepository()
	profiles := testutil.NewMockProfileRepository()
	profileSvc := services.NewProfileService(profiles, 10, log)
	userSvc := services.NewAuthService(users, profileSvc, bcrypt.MinCost, log)
	return &authFixture{
		handler:  NewAuthHandler(userSvc, cfg, log, validator.New()),
		users:    users,
		profiles: profiles,
	}
}

type authEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"data"`
	Error string `json:"error"`
}

func doJSON(handler http.HandlerFunc, method, path, body string) (*httptest.ResponseRecorder, authEnvelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	var env authEnvelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid registration",
			body:           `{"email": "New@Example.com", "password": "password123", "firstName": "Ada"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid email",
			body:           `{"email": "nope", "password": "password123"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "short password",
			body:           `{"email": "a@b.co", "password": "short"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           `[`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			rr, env := doJSON(f.handler.Register, http.MethodPost, "/api/auth/register", tt.body)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v: %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if rr.Code != http.StatusCreated {
				return
			}

			if env.Data.AccessToken == "" || env.Data.RefreshToken == "" {
				t.Error("expected a token pair")
			}
			if env.Data.User.Email != "new@example.com" {
				t.Errorf("email = %v, want lowercased", env.Data.User.Email)
			}

			p, err := f.profiles.GetByID(context.Background(), env.Data.User.ID)
			if err != nil {
				t.Fatalf("profile not created: %v", err)
			}
			if p.Credits != 10 {
				t.Errorf("credits = %d, want 10", p.Credits)
			}

			cookies := rr.Result().Cookies()
			if len(cookies) != 2 {
				t.Errorf("expected access and refresh cookies, got %d", len(cookies))
			}
		})
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture()
	body := `{"email": "dup@example.com", "password": "password123"}`

	if rr, _ := doJSON(f.handler.Register, http.MethodPost, "/api/auth/register", body); rr.Code != http.StatusCreated {
		t.Fatalf("first registration status = %v", rr.Code)
	}
	rr, _ := doJSON(f.handler.Register, http.MethodPost, "/api/auth/register", body)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate registration status = %v, want 409", rr.Code)
	}
}

func TestAuthHandler_LoginAndRefresh(t *testing.T) {
	f := newAuthFixture()
	doJSON(f.handler.Register, http.MethodPost, "/api/auth/register", `{"email": "me@example.com", "password": "password123"}`)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "valid credentials", body: `{"email": "me@example.com", "password": "password123"}`, expectedStatus: http.StatusOK},
		{name: "wrong password", body: `{"email": "me@example.com", "password": "wrong-password"}`, expectedStatus: http.StatusUnauthorized},
		{name: "unknown email", body: `{"email": "who@example.com", "password": "password123"}`, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := doJSON(f.handler.Login, http.MethodPost, "/api/auth/login", tt.body)
			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code != http.StatusOK {
				return
			}

			refreshBody := `{"refreshToken": "` + env.Data.RefreshToken + `"}`
			rr, refreshed := doJSON(f.handler.RefreshToken, http.MethodPost, "/api/auth/refresh", refreshBody)
			if rr.Code != http.StatusOK {
				t.Fatalf("refresh status = %v, want 200", rr.Code)
			}
			if refreshed.Data.User.ID != env.Data.User.ID {
				t.Errorf("refreshed user = %v, want %v", refreshed.Data.User.ID, env.Data.User.ID)
			}

			// An access token is not accepted as a refresh token
			accessBody := `{"refreshToken": "` + env.Data.AccessToken + `"}`
			if rr, _ := doJSON(f.handler.RefreshToken, http.MethodPost, "/api/auth/refresh", accessBody); rr.Code != http.StatusUnauthorized {
				t.Errorf("refresh with access token status = %v, want 401", rr.Code)
			}
		})
	}
}

func TestAuthHandler_Session(t *testing.T) {
	f := newAuthFixture()
	_, env := doJSON(f.handler.Register, http.MethodPost, "/api/auth/register", `{"email": "s@example.com", "password": "password123"}`)

	claims, err := auth.ParseTyped(env.Data.AccessToken, testSecret, auth.TokenTypeAccess)
	if err != nil {
		t.Fatalf("ParseTyped() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, claims))
	rr := httptest.NewRecorder()
	f.handler.Session(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rr.Code)
	}
	var resp struct {
		Data struct {
			UserID    string    `json:"userId"`
			Email     string    `json:"email"`
			ExpiresAt time.Time `json:"expiresAt"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.UserID != env.Data.User.ID || resp.Data.Email != "s@example.com" {
		t.Errorf("session = %+v", resp.Data)
	}
	if resp.Data.ExpiresAt.IsZero() {
		t.Error("session expiry not set")
	}

	// Without claims
	rr = httptest.NewRecorder()
	f.handler.Session(rr, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status without claims = %v, want 401", rr.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture()
	rr := httptest.NewRecorder()
	f.handler.Logout(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge >= 0 || c.Value != "" {
			t.Errorf("cookie %s not cleared: %+v", c.Name, c)
		}
	}
}
