package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/domain/image"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/services"
	"github.com/pratik-mahalle/upscaler/internal/testutil"
)

func TestImageHandler_Save(t *testing.T) {
	tests := []struct {
		name           string
		callerID       string
		body           string
		expectedStatus int
		expectedError  string
		expectedScale  float64
	}{
		{
			name:           "default scale",
			body:           `{"userId": "u1", "originalUrl": "data:image/png;base64,AA==", "upscaledUrl": "data:image/png;base64,AQ=="}`,
			expectedStatus: http.StatusOK,
			expectedScale:  2,
		},
		{
			name:           "explicit scale",
			body:           `{"userId": "u1", "originalUrl": "a", "upscaledUrl": "b", "scale": 4, "fileSizeBytes": 1234}`,
			expectedStatus: http.StatusOK,
			expectedScale:  4,
		},
		{
			name:           "fractional scale",
			body:           `{"userId": "u1", "originalUrl": "a", "upscaledUrl": "b", "scale": 1.5}`,
			expectedStatus: http.StatusOK,
			expectedScale:  1.5,
		},
		{
			name:           "scale below one is kept",
			body:           `{"userId": "u1", "originalUrl": "a", "upscaledUrl": "b", "scale": 0.4}`,
			expectedStatus: http.StatusOK,
			expectedScale:  0.4,
		},
		{
			name:           "zero scale defaults",
			body:           `{"userId": "u1", "originalUrl": "a", "upscaledUrl": "b", "scale": 0}`,
			expectedStatus: http.StatusOK,
			expectedScale:  2,
		},
		{
			name:           "missing upscaled url",
			body:           `{"userId": "u1", "originalUrl": "a"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Missing required fields",
		},
		{
			name:           "missing user id",
			body:           `{"originalUrl": "a", "upscaledUrl": "b"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Missing required fields",
		},
		{
			name:           "token subject differs",
			callerID:       "someone-else",
			body:           `{"userId": "u1", "originalUrl": "a", "upscaledUrl": "b"}`,
			expectedStatus: http.StatusForbidden,
			expectedError:  "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockImageRepository()
			log := logger.Nop()
			handler := NewImageHandler(services.NewImageService(repo, nil, "", log), log, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/api/images/save", strings.NewReader(tt.body))
			if tt.callerID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, tt.callerID))
			}
			rr := httptest.NewRecorder()

			handler.Save(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v: %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}

			var resp map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if tt.expectedError != "" {
				if resp["error"] != tt.expectedError {
					t.Errorf("error = %v, want %v", resp["error"], tt.expectedError)
				}
				return
			}

			img, _ := resp["image"].(map[string]interface{})
			if img["scale"] != tt.expectedScale {
				t.Errorf("scale = %v, want %v", img["scale"], tt.expectedScale)
			}
			if img["id"] == "" || img["createdAt"] == nil {
				t.Errorf("image missing id or createdAt: %v", img)
			}
		})
	}
}

func TestImageHandler_SaveEchoesInput(t *testing.T) {
	repo := testutil.NewMockImageRepository()
	log := logger.Nop()
	handler := NewImageHandler(services.NewImageService(repo, nil, "", log), log, 1<<20)

	body := `{"userId": "u1", "originalUrl": "data:image/jpeg;base64,/9j/", "upscaledUrl": "data:image/png;base64,iVBO", "scale": 3, "fileSizeBytes": 42}`
	req := httptest.NewRequest(http.MethodPost, "/api/images/save", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Save(rr, req)

	var resp struct {
		Success bool `json:"success"`
		Image   struct {
			UserID        string `json:"userId"`
			OriginalURL   string `json:"originalUrl"`
			UpscaledURL   string `json:"upscaledUrl"`
			Scale         float64 `json:"scale"`
			FileSizeBytes *int64 `json:"fileSizeBytes"`
		} `json:"image"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success ||
		resp.Image.UserID != "u1" ||
		resp.Image.OriginalURL != "data:image/jpeg;base64,/9j/" ||
		resp.Image.UpscaledURL != "data:image/png;base64,iVBO" ||
		resp.Image.Scale != 3 ||
		resp.Image.FileSizeBytes == nil || *resp.Image.FileSizeBytes != 42 {
		t.Errorf("record does not echo input: %+v", resp)
	}
}

func TestImageHandler_List(t *testing.T) {
	repo := testutil.NewMockImageRepository()
	log := logger.Nop()
	svc := services.NewImageService(repo, nil, "", log)
	handler := NewImageHandler(svc, log, 1<<20)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Save(ctx, image.SaveInput{UserID: "u1", OriginalURL: "a", UpscaledURL: "b"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	if _, err := svc.Save(ctx, image.SaveInput{UserID: "u2", OriginalURL: "a", UpscaledURL: "b"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name           string
		userID         string
		queryParams    string
		expectedStatus int
		expectedCount  int
		expectedTotal  float64
	}{
		{name: "list all", userID: "u1", expectedStatus: http.StatusOK, expectedCount: 3, expectedTotal: 3},
		{name: "second page", userID: "u1", queryParams: "?page=2&page_size=2", expectedStatus: http.StatusOK, expectedCount: 1, expectedTotal: 3},
		{name: "other user", userID: "u2", expectedStatus: http.StatusOK, expectedCount: 1, expectedTotal: 1},
		{name: "unauthenticated", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/images"+tt.queryParams, nil)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, tt.userID))
			}
			rr := httptest.NewRecorder()

			handler.List(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code != http.StatusOK {
				return
			}

			var resp map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			data, _ := resp["data"].([]interface{})
			if len(data) != tt.expectedCount {
				t.Errorf("len(data) = %d, want %d", len(data), tt.expectedCount)
			}
			if resp["total_items"] != tt.expectedTotal {
				t.Errorf("total_items = %v, want %v", resp["total_items"], tt.expectedTotal)
			}
		})
	}
}
