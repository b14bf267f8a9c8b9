package validator

import "testing"

type sampleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"imageUrl" validate:"omitempty,imgsrc"`
	Amount int64  `json:"amount" validate:"gte=1"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name       string
		req        sampleRequest
		wantFields []string
	}{
		{
			name:       "valid request",
			req:        sampleRequest{Email: "a@b.co", Source: "https://x.test/a.png", Amount: 1},
			wantFields: nil,
		},
		{
			name:       "data url accepted",
			req:        sampleRequest{Email: "a@b.co", Source: "data:image/png;base64,AAAA", Amount: 2},
			wantFields: nil,
		},
		{
			name:       "bad source and amount",
			req:        sampleRequest{Email: "a@b.co", Source: "ftp://x", Amount: 0},
			wantFields: []string{"imageUrl", "amount"},
		},
		{
			name:       "missing email",
			req:        sampleRequest{Amount: 1},
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(tt.req)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() returned %d errors, want %d: %+v", len(errs), len(tt.wantFields), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Validate() error[%d].Field = %v, want %v", i, errs[i].Field, field)
				}
				if errs[i].Message == "" {
					t.Errorf("Validate() error[%d] has empty message", i)
				}
			}
		})
	}
}

func TestIsImageSource(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"data:image/png;base64,AAAA", true},
		{"http://example.com/a.png", true},
		{"https://example.com/a.png", true},
		{"ftp://example.com/a.png", false},
		{"example.com/a.png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsImageSource(tt.in); got != tt.want {
			t.Errorf("IsImageSource(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
