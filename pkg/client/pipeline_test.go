package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_UpscaleImage(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		deductStatus  int
		deductBody    string
		upscaleStatus int
		upscaleBody   string
		saveStatus    int
		wantSuccess   bool
		wantError     string
		wantCredits   *int64
		wantUpscales  int
		wantSaves     int
	}{
		{
			name:          "anonymous skips ledger and history",
			upscaleStatus: http.StatusOK,
			wantSuccess:   true,
			wantUpscales:  1,
		},
		{
			name:          "signed in deducts and saves",
			userID:        "u1",
			upscaleStatus: http.StatusOK,
			wantSuccess:   true,
			wantUpscales:  1,
			wantSaves:     1,
		},
		{
			name:         "insufficient credits",
			userID:       "u1",
			deductStatus: http.StatusPaymentRequired,
			deductBody:   `{"error":"Insufficient credits","credits":0}`,
			wantError:    "Insufficient credits. Please upgrade to premium or purchase more credits.",
			wantCredits:  ptr(int64(0)),
		},
		{
			name:         "ledger error uses server message",
			userID:       "u1",
			deductStatus: http.StatusNotFound,
			deductBody:   `{"error":"User profile not found"}`,
			wantError:    "User profile not found",
		},
		{
			name:         "ledger error without message",
			userID:       "u1",
			deductStatus: http.StatusInternalServerError,
			deductBody:   `{}`,
			wantError:    "Failed to process credits",
		},
		{
			name:          "upstream key rejected",
			upscaleStatus: http.StatusUnauthorized,
			upscaleBody:   `{"error":"Invalid API key"}`,
			wantError:     "Invalid or expired API key. Please check your upscaler API configuration.",
			wantUpscales:  1,
		},
		{
			name:          "rate limited",
			upscaleStatus: http.StatusTooManyRequests,
			upscaleBody:   `{"error":"Too many requests"}`,
			wantError:     "Rate limit exceeded. Please wait a moment and try again.",
			wantUpscales:  1,
		},
		{
			name:          "upscale error uses server message",
			upscaleStatus: http.StatusBadRequest,
			upscaleBody:   `{"error":"Image URL is required"}`,
			wantError:     "Image URL is required",
			wantUpscales:  1,
		},
		{
			name:          "upscale error without message",
			upscaleStatus: http.StatusServiceUnavailable,
			upscaleBody:   `{}`,
			wantError:     "API Error: 503",
			wantUpscales:  1,
		},
		{
			name:          "missing url",
			userID:        "u1",
			upscaleStatus: http.StatusOK,
			upscaleBody:   `{"success":true}`,
			wantError:     "No upscaled image URL returned from server",
			wantUpscales:  1,
		},
		{
			name:          "save failure does not fail the outcome",
			userID:        "u1",
			upscaleStatus: http.StatusOK,
			saveStatus:    http.StatusInternalServerError,
			wantSuccess:   true,
			wantUpscales:  1,
			wantSaves:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newFakeServer(t)
			if tt.deductStatus != 0 {
				f.deductStatus = tt.deductStatus
				f.deductBody = tt.deductBody
			}
			if tt.upscaleBody != "" {
				f.upscaleStatus = tt.upscaleStatus
				f.upscaleBody = tt.upscaleBody
			}
			if tt.saveStatus != 0 {
				f.saveStatus = tt.saveStatus
			}

			c := NewClient(Config{BaseURL: srv.URL})
			out := c.UpscaleImage(context.Background(), UpscaleImageInput{
				ImageURL: "data:image/png;base64,aGVsbG8=",
				UserID:   tt.userID,
			})

			if out.Success != tt.wantSuccess {
				t.Fatalf("Success = %v, want %v (error %q)", out.Success, tt.wantSuccess, out.Error)
			}
			if out.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", out.Error, tt.wantError)
			}
			if (out.Credits == nil) != (tt.wantCredits == nil) {
				t.Errorf("Credits = %v, want %v", out.Credits, tt.wantCredits)
			}
			if got := f.count("/api/upscale"); got != tt.wantUpscales {
				t.Errorf("upscale calls = %d, want %d", got, tt.wantUpscales)
			}
			if got := f.count("/api/images/save"); got != tt.wantSaves {
				t.Errorf("save calls = %d, want %d", got, tt.wantSaves)
			}
		})
	}
}

func TestClient_UpscaleImageDefaults(t *testing.T) {
	f, srv := newFakeServer(t)
	c := NewClient(Config{BaseURL: srv.URL})

	size := int64(5)
	out := c.UpscaleImage(context.Background(), UpscaleImageInput{
		ImageURL:      "data:image/png;base64,aGVsbG8=",
		UserID:        "u1",
		FileSizeBytes: &size,
	})
	if !out.Success || out.Width != 2048 {
		t.Fatalf("outcome = %+v", out)
	}

	if f.lastScale != float64(2) {
		t.Errorf("scale sent = %v, want 2", f.lastScale)
	}
	if len(f.saved) != 1 {
		t.Fatalf("saved = %d records, want 1", len(f.saved))
	}
	rec := f.saved[0]
	if rec["userId"] != "u1" || rec["originalUrl"] != "data:image/png;base64,aGVsbG8=" || rec["fileSizeBytes"] != float64(5) {
		t.Errorf("saved record = %v", rec)
	}
}

func TestClient_UpscaleImageNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	out := c.UpscaleImage(context.Background(), UpscaleImageInput{ImageURL: "https://example.com/a.png"})

	if out.Success || !strings.HasPrefix(out.Error, "Network error: ") {
		t.Errorf("outcome = %+v, want network error", out)
	}
}
