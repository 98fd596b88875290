package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/penshort/accounts/internal/cache"
)

func newLimiter(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewWithClient(client, cache.Options{})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitLogin_BlocksAfterBurst(t *testing.T) {
	handler := RateLimitLogin(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: newLimiter(t),
		Enabled: true,
		RPS:     0.01,
		Burst:   2,
	})(okHandler())

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("203.0.113.7:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	// Same IP from a different source port shares the bucket.
	rec := send("203.0.113.7:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want 2", rec.Header().Get("X-RateLimit-Limit"))
	}

	if rec := send("198.51.100.1:5000"); rec.Code != http.StatusOK {
		t.Fatalf("other IP: status = %d, want 200", rec.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) CheckLoginRateLimit(ctx context.Context, ip string, rps float64, burst int) (*cache.RateLimitResult, error) {
	return &cache.RateLimitResult{Allowed: true}, errors.New("redis down")
}

func TestRateLimitLogin_FailOpenAndDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  RateLimitConfig
	}{
		{"redis_error", RateLimitConfig{Logger: discardLogger(), Limiter: failingLimiter{}, Enabled: true, RPS: 1, Burst: 1}},
		{"disabled", RateLimitConfig{Logger: discardLogger(), Limiter: failingLimiter{}, Enabled: false}},
		{"no_limiter", RateLimitConfig{Logger: discardLogger(), Enabled: true, RPS: 1, Burst: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RateLimitLogin(tt.cfg)(okHandler())
			for i := 0; i < 3; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user/login", nil))
				if rec.Code != http.StatusOK {
					t.Fatalf("status = %d, want 200", rec.Code)
				}
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := clientIP(req); got != "2001:db8::1" {
		t.Errorf("clientIP = %q", got)
	}
	req.RemoteAddr = "10.0.0.1"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Errorf("clientIP = %q", got)
	}
}
