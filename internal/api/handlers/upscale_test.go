package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pratik-mahalle/upscaler/internal/integrations"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/services"
	"github.com/pratik-mahalle/upscaler/internal/testutil"
)

func newUpscaleHandler(upstream *testutil.MockUpstream, production bool) *UpscaleHandler {
	log := logger.Nop()
	fetcher := &testutil.MockFetcher{Body: []byte("remote-bytes")}
	gateway := services.NewUpscaleService(upstream, fetcher, log)
	return NewUpscaleHandler(gateway, log, 1<<20, production)
}

func postUpscale(h *UpscaleHandler, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodPost, "/api/upscale", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Upscale(rr, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	return rr, resp
}

func TestUpscaleHandler_Upscale(t *testing.T) {
	tests := []struct {
		name           string
		upstream       *testutil.MockUpstream
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing key checked before body",
			upstream:       &testutil.MockUpstream{},
			body:           "not json",
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Server configuration error",
		},
		{
			name:           "invalid json",
			upstream:       &testutil.MockUpstream{Key: "k"},
			body:           "{",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON body",
		},
		{
			name:           "missing image url",
			upstream:       &testutil.MockUpstream{Key: "k"},
			body:           `{"scale": 2}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Image URL is required",
		},
		{
			name:           "non-string image url",
			upstream:       &testutil.MockUpstream{Key: "k"},
			body:           `{"imageUrl": 5}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Image URL is required",
		},
		{
			name:           "bad image url",
			upstream:       &testutil.MockUpstream{Key: "k"},
			body:           `{"imageUrl": "ftp://x/a.png"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid image URL format",
		},
		{
			name:           "empty data url",
			upstream:       &testutil.MockUpstream{Key: "k"},
			body:           `{"imageUrl": "data:image/png;base64,"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid data URL format",
		},
		{
			name:           "upstream rate limited",
			upstream:       &testutil.MockUpstream{Key: "k", Err: &integrations.StatusError{StatusCode: 429}},
			body:           `{"imageUrl": "data:image/png;base64,aGVsbG8="}`,
			expectedStatus: http.StatusTooManyRequests,
			expectedError:  "Rate limit exceeded. Please try again later.",
		},
		{
			name:           "upstream empty body",
			upstream:       &testutil.MockUpstream{Key: "k", Response: []byte{}},
			body:           `{"imageUrl": "data:image/png;base64,aGVsbG8="}`,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "No image data received from upstream service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newUpscaleHandler(tt.upstream, false)
			rr, resp := postUpscale(h, tt.body)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if resp["error"] != tt.expectedError {
				t.Errorf("error = %v, want %v", resp["error"], tt.expectedError)
			}
		})
	}
}

func TestUpscaleHandler_Success(t *testing.T) {
	upstream := &testutil.MockUpstream{Key: "k", Response: []byte("png")}
	h := newUpscaleHandler(upstream, false)

	rr, resp := postUpscale(h, `{"imageUrl": "https://img.test/a.png", "scale": "3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200: %s", rr.Code, rr.Body.String())
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if url, _ := resp["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("url = %q, want png data url", url)
	}
	meta, _ := resp["meta"].(map[string]interface{})
	if meta["scale"] != float64(3) || meta["width"] != float64(3072) || meta["height"] != float64(3072) {
		t.Errorf("meta = %v, want scale 3 and 3072x3072", meta)
	}
	if upstream.LastSize != [2]int{3072, 3072} {
		t.Errorf("upstream size = %v, want 3072x3072", upstream.LastSize)
	}
}

func TestUpscaleHandler_Details(t *testing.T) {
	tests := []struct {
		name        string
		production  bool
		wantDetails bool
	}{
		{name: "development shows details", production: false, wantDetails: true},
		{name: "production hides details", production: true, wantDetails: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := &testutil.MockUpstream{Key: "k", Err: fmt.Errorf("connection reset")}
			h := newUpscaleHandler(upstream, tt.production)

			rr, resp := postUpscale(h, `{"imageUrl": "data:image/png;base64,aGVsbG8="}`)
			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status = %v, want 500", rr.Code)
			}
			if resp["error"] != "Failed to upscale image" {
				t.Errorf("error = %v", resp["error"])
			}
			_, has := resp["details"]
			if has != tt.wantDetails {
				t.Errorf("details present = %v, want %v (%v)", has, tt.wantDetails, resp)
			}
		})
	}
}
