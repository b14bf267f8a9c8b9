package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/services"
	"github.com/pratik-mahalle/upscaler/internal/testutil"
)

func TestProfileHandler(t *testing.T) {
	repo := testutil.NewMockProfileRepository()
	repo.Seed("free", 7, false)
	repo.Seed("paid", 0, true)
	log := logger.Nop()
	handler := NewProfileHandler(services.NewProfileService(repo, 10, log), log)

	tests := []struct {
		name           string
		userID         string
		usage          bool
		expectedStatus int
		check          func(t *testing.T, data map[string]interface{})
	}{
		{
			name:           "free profile",
			userID:         "free",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, data map[string]interface{}) {
				if data["credits"] != float64(7) {
					t.Errorf("credits = %v, want 7", data["credits"])
				}
			},
		},
		{
			name:           "premium profile",
			userID:         "paid",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, data map[string]interface{}) {
				if data["credits"] != "unlimited" {
					t.Errorf("credits = %v, want unlimited", data["credits"])
				}
			},
		},
		{
			name:           "missing profile",
			userID:         "ghost",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unauthenticated",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "usage",
			userID:         "free",
			usage:          true,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, data map[string]interface{}) {
				if data["creditsRemaining"] != float64(7) || data["creditsTotal"] != float64(10) {
					t.Errorf("usage = %v", data)
				}
				if data["unlimited"] != false {
					t.Errorf("unlimited = %v, want false", data["unlimited"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, tt.userID))
			}
			rr := httptest.NewRecorder()

			if tt.usage {
				handler.Usage(rr, req)
			} else {
				handler.Get(rr, req)
			}

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}

			var resp map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if rr.Code == http.StatusNotFound && resp["error"] != "User profile not found" {
				t.Errorf("error = %v, want User profile not found", resp["error"])
			}
			if tt.check != nil {
				data, _ := resp["data"].(map[string]interface{})
				tt.check(t, data)
			}
		})
	}
}
