package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	m := NewInMemory()

	m.IncUserCreated()
	m.IncUserCreated()
	m.IncUserUpdated()
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginFailure)
	m.IncLogin(LoginFailure)
	m.IncTokenIssued()
	m.IncTokenRevoked()
	m.IncTokenCacheHit()
	m.IncTokenCacheMiss()

	snap := m.Snapshot()
	if snap.UsersCreated != 2 {
		t.Errorf("UsersCreated = %d, want 2", snap.UsersCreated)
	}
	if snap.UsersUpdated != 1 {
		t.Errorf("UsersUpdated = %d, want 1", snap.UsersUpdated)
	}
	if snap.LoginsSucceeded != 1 || snap.LoginsFailed != 2 {
		t.Errorf("logins = %d/%d, want 1/2", snap.LoginsSucceeded, snap.LoginsFailed)
	}
	if snap.TokensIssued != 1 || snap.TokensRevoked != 1 {
		t.Errorf("tokens = %d/%d, want 1/1", snap.TokensIssued, snap.TokensRevoked)
	}
	if snap.TokenCacheHits != 1 || snap.TokenCacheMiss != 1 {
		t.Errorf("cache = %d/%d, want 1/1", snap.TokenCacheHits, snap.TokenCacheMiss)
	}
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoop()
	n.IncUserCreated()
	n.IncLogin(LoginSuccess)
	n.IncTokenIssued()
}

func TestPrometheusRecorder_Exposition(t *testing.T) {
	p := NewPrometheus()
	p.IncUserCreated()
	p.IncLogin(LoginFailure)
	p.IncTokenIssued()

	r := chi.NewRouter()
	r.Use(p.Middleware)
	r.Get("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Handle("/metrics", p.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/me", nil))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"accounts_users_created_total 1",
		`accounts_logins_total{status="failure"} 1`,
		"accounts_tokens_issued_total 1",
		`http_requests_total{method="GET",path="/api/user/me",status="401"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
