package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pratik-mahalle/upscaler/internal/auth"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
)

const testSecret = "test-secret"

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, _ := GetUserID(r)
	fmt.Fprint(w, id)
}

func TestAuthMiddleware(t *testing.T) {
	pair, err := auth.MintTokens("user-1", "a@b.co", testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer", header: "Bearer " + pair.AccessToken, wantStatus: 200, wantBody: "user-1"},
		{name: "lowercase scheme", header: "bearer " + pair.AccessToken, wantStatus: 200, wantBody: "user-1"},
		{name: "cookie", cookie: pair.AccessToken, wantStatus: 200, wantBody: "user-1"},
		{name: "missing", wantStatus: 401},
		{name: "refresh token rejected", header: "Bearer " + pair.RefreshToken, wantStatus: 401},
		{name: "garbage", header: "Bearer nope", wantStatus: 401},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", wantStatus: 401},
	}

	handler := AuthMiddleware(testSecret)(http.HandlerFunc(whoAmI))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	pair, _ := auth.MintTokens("user-1", "a@b.co", testSecret, time.Minute, time.Hour)
	handler := OptionalAuthMiddleware(testSecret)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "anonymous", want: ""},
		{name: "valid token", header: "Bearer " + pair.AccessToken, want: "user-1"},
		{name: "invalid token continues anonymously", header: "Bearer bad", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK || rr.Body.String() != tt.want {
				t.Errorf("got %d %q, want 200 %q", rr.Code, rr.Body.String(), tt.want)
			}
		})
	}
}

func TestRateLimit_Memory(t *testing.T) {
	limiter := NewMemoryLimiter(1, 2)
	handler := RateLimit(limiter, IPKey, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 4)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	codes = append(codes, rr.Code)

	want := []int{204, 204, 429, 204}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("status codes = %v, want %v", codes, want)
		}
	}
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	l := NewMemoryLimiter(1, 1)
	l.idleTTL = time.Millisecond
	_, _ = l.Allow(context.Background(), "a")
	time.Sleep(5 * time.Millisecond)
	l.Cleanup()
	if len(l.visitors) != 0 {
		t.Errorf("Cleanup() left %d visitors", len(l.visitors))
	}
}

type fakeRedis struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, d time.Duration) *redis.BoolCmd {
	f.expires[key] = d
	return redis.NewBoolResult(true, nil)
}

func TestRedisLimiter_Allow(t *testing.T) {
	fake := &fakeRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}}
	l := &RedisLimiter{client: fake, limit: 2, window: time.Hour, prefix: "rl"}

	var got []bool
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(context.Background(), "ip:1.2.3.4")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		got = append(got, ok)
	}
	if got[0] != true || got[1] != true || got[2] != false {
		t.Errorf("Allow() sequence = %v, want [true true false]", got)
	}
	if len(fake.expires) != 1 {
		t.Errorf("Expire called for %d keys, want 1", len(fake.expires))
	}
	for _, d := range fake.expires {
		if d != time.Hour {
			t.Errorf("expiry = %v, want 1h", d)
		}
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	fake := &fakeRedis{err: fmt.Errorf("connection refused")}
	l := &RedisLimiter{client: fake, limit: 1, window: time.Minute, prefix: "rl"}
	handler := RateLimit(l, IPKey, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 when limiter errors", rr.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("generated id = %q, header = %q", seen, rr.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Errorf("propagated id = %q, want abc", seen)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v, want Internal server error", body["error"])
	}
}

func TestLogger_AddLogFieldThroughMiddleware(t *testing.T) {
	pair, _ := auth.MintTokens("user-9", "a@b.co", testSecret, time.Minute, time.Hour)
	var captured *responseWriter

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = w.(*responseWriter)
	})
	handler := Logger(logger.Nop())(OptionalAuthMiddleware(testSecret)(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured == nil || captured.fields["user_id"] != "user-9" {
		t.Errorf("log fields = %v, want user_id", captured)
	}
}
