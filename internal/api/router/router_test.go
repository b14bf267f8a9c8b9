package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/upscaler/internal/api/handlers"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/config"
	"github.com/pratik-mahalle/upscaler/internal/integrations"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/validator"
	"github.com/pratik-mahalle/upscaler/internal/repository/postgres"
	"github.com/pratik-mahalle/upscaler/internal/services"
	"github.com/pratik-mahalle/upscaler/internal/testutil"
)

func newTestServer(t *testing.T, upscaleLimit middleware.Limiter) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG upscaled"))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test", FrontendURL: "http://localhost:3000", MaxBodyBytes: 1 << 20},
		Auth: config.AuthConfig{
			JWTSecret:          "router-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
			FreeCredits:        10,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.CleanupDB(db) })

	log := logger.Nop()
	profileSvc := services.NewProfileService(postgres.NewProfileRepository(db), cfg.Auth.FreeCredits, log)
	userSvc := services.NewAuthService(postgres.NewUserRepository(db), profileSvc, bcrypt.MinCost, log)
	imageSvc := services.NewImageService(postgres.NewImageRepository(db), nil, "", log)
	gateway := services.NewUpscaleService(
		integrations.NewClipdropClient("test-key", upstream.URL, 5*time.Second),
		services.NewImageFetcher(5*time.Second, 1<<20),
		log,
	)

	h := &Handlers{
		Health:  handlers.NewHealthHandler(db, gateway, log),
		Auth:    handlers.NewAuthHandler(userSvc, cfg, log, validator.New()),
		Upscale: handlers.NewUpscaleHandler(gateway, log, cfg.Server.MaxBodyBytes, false),
		Credits: handlers.NewCreditsHandler(profileSvc, log),
		Images:  handlers.NewImageHandler(imageSvc, log, cfg.Server.MaxBodyBytes),
		Profile: handlers.NewProfileHandler(profileSvc, log),
	}

	srv := httptest.NewServer(New(cfg, log, h, Limiters{Upscale: upscaleLimit}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, srv.URL+path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRouter_UpscaleFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	status, reg := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "flow@example.com",
		"password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %v: %v", status, reg)
	}
	data := reg["data"].(map[string]interface{})
	token := data["accessToken"].(string)
	userID := data["user"].(map[string]interface{})["id"].(string)

	status, deducted := call(t, srv, http.MethodPost, "/api/credits/deduct", token, map[string]interface{}{"userId": userID})
	if status != http.StatusOK || deducted["credits"] != float64(9) {
		t.Fatalf("deduct = %v %v, want 200 with 9 credits", status, deducted)
	}

	status, upscaled := call(t, srv, http.MethodPost, "/api/upscale", token, map[string]interface{}{
		"imageUrl": "data:image/png;base64,aGVsbG8=",
		"scale":    4,
	})
	if status != http.StatusOK {
		t.Fatalf("upscale status = %v: %v", status, upscaled)
	}

	status, saved := call(t, srv, http.MethodPost, "/api/images/save", token, map[string]interface{}{
		"userId":      userID,
		"originalUrl": "data:image/png;base64,aGVsbG8=",
		"upscaledUrl": upscaled["url"],
		"scale":       4,
	})
	if status != http.StatusOK || saved["success"] != true {
		t.Fatalf("save = %v %v", status, saved)
	}

	status, list := call(t, srv, http.MethodGet, "/api/images", token, nil)
	if status != http.StatusOK || list["total_items"] != float64(1) {
		t.Errorf("list = %v %v, want one record", status, list)
	}

	status, usage := call(t, srv, http.MethodGet, "/api/profile/usage", token, nil)
	if status != http.StatusOK {
		t.Fatalf("usage status = %v", status)
	}
	u := usage["data"].(map[string]interface{})
	if u["imagesUpscaled"] != float64(1) || u["creditsRemaining"] != float64(9) {
		t.Errorf("usage = %v", u)
	}

	// Another caller's token cannot spend this user's credits
	_, other := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "other@example.com",
		"password": "password123",
	})
	otherToken := other["data"].(map[string]interface{})["accessToken"].(string)
	if status, _ := call(t, srv, http.MethodPost, "/api/credits/deduct", otherToken, map[string]interface{}{"userId": userID}); status != http.StatusForbidden {
		t.Errorf("cross-user deduct status = %v, want 403", status)
	}
}

func TestRouter_Protection(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/profile", http.StatusUnauthorized},
		{http.MethodGet, "/api/profile/usage", http.StatusUnauthorized},
		{http.MethodGet, "/api/images", http.StatusUnauthorized},
		{http.MethodGet, "/api/auth/session", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/logout", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if status, _ := call(t, srv, tt.method, tt.path, "", nil); status != tt.expectedStatus {
				t.Errorf("status = %v, want %v", status, tt.expectedStatus)
			}
		})
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %v, want 200", resp.StatusCode)
	}
}

func TestRouter_UpscaleRateLimit(t *testing.T) {
	srv := newTestServer(t, middleware.NewMemoryLimiter(0.001, 1))

	body := map[string]interface{}{"imageUrl": "data:image/png;base64,aGVsbG8="}
	if status, _ := call(t, srv, http.MethodPost, "/api/upscale", "", body); status != http.StatusOK {
		t.Fatalf("first upscale status = %v, want 200", status)
	}
	if status, _ := call(t, srv, http.MethodPost, "/api/upscale", "", body); status != http.StatusTooManyRequests {
		t.Errorf("second upscale status = %v, want 429", status)
	}
}
