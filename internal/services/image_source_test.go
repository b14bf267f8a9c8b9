package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
)

func TestClassifySource(t *testing.T) {
	tests := []struct {
		in   string
		want sourceKind
	}{
		{"data:image/png;base64,AAAA", sourceDataURL},
		{"data:,", sourceDataURL},
		{"http://x.test/a.png", sourceRemote},
		{"HTTPS://x.test/a.png", sourceRemote},
		{"https://", sourceInvalid},
		{"ftp://x.test/a.png", sourceInvalid},
		{"javascript:alert(1)", sourceInvalid},
		{"x.test/a.png", sourceInvalid},
	}
	for _, tt := range tests {
		if got := classifySource(tt.in); got != tt.want {
			t.Errorf("classifySource(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "padded", in: "data:image/png;base64,aGVsbG8=", want: "hello"},
		{name: "unpadded", in: "data:image/png;base64,aGVsbG8", want: "hello"},
		{name: "url alphabet", in: "data:image/png;base64,-_8=", want: "\xfb\xff"},
		{name: "empty payload", in: "data:image/png;base64,", wantErr: true},
		{name: "no comma", in: "data:image/png;base64", wantErr: true},
		{name: "not base64", in: "data:image/png;base64,!!!", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeDataURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeDataURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if appErr, ok := errors.As(err); !ok || appErr.Message != "Invalid data URL format" {
					t.Errorf("decodeDataURL() error = %v", err)
				}
				return
			}
			if string(got) != tt.want {
				t.Errorf("decodeDataURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("image"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/big":
			_, _ = w.Write(make([]byte, 64))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := NewImageFetcher(50*time.Millisecond, 32)

	tests := []struct {
		path    string
		want    string
		wantMsg string
	}{
		{path: "/ok", want: "image"},
		{path: "/missing", wantMsg: "Failed to fetch image from URL"},
		{path: "/empty", wantMsg: "Fetched image is empty or invalid"},
		{path: "/big", wantMsg: "Fetched image is empty or invalid"},
		{path: "/slow", wantMsg: "Failed to fetch image from URL"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := fetcher.Fetch(context.Background(), server.URL+tt.path)
			if tt.wantMsg != "" {
				appErr, ok := errors.As(err)
				if !ok || appErr.Message != tt.wantMsg || appErr.StatusCode != http.StatusBadRequest {
					t.Errorf("Fetch() error = %v, want 400 %q", err, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
		})
	}
}
