package gatekeeper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/duelhq/duel-tracker/internal/platform/logging"
	"github.com/duelhq/duel-tracker/internal/platform/resilience"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

func newTestClient(baseURL string, cacheTTL time.Duration) *Client {
	return NewClient(Config{
		BaseURL:        baseURL,
		IntrospectPath: "/v1/auth/introspect",
		Timeout:        2 * time.Second,
		CacheTTL:       cacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	}, logging.NewNop())
}

func TestVerifyAccessToken_Active(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"user_id":"u1","username":"kaiba","is_admin":true,"is_supporter":false}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)

	principal, err := client.VerifyAccessToken(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if principal.UserID != "u1" {
		t.Fatalf("unexpected user id: got=%s want=u1", principal.UserID)
	}
	if principal.Username != "kaiba" {
		t.Fatalf("unexpected username: got=%s", principal.Username)
	}
	if !principal.IsAdmin {
		t.Fatal("expected admin principal")
	}
}

func TestVerifyAccessToken_CachesPrincipal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"active":true,"user_id":"u1","username":"kaiba"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "token-1"); err != nil {
			t.Fatalf("verify token: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("unexpected introspection calls: got=%d want=1", got)
	}
}

func TestVerifyAccessToken_Denied(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)

	_, err := client.VerifyAccessToken(context.Background(), "bad-token")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrUnauthorized)
	}
}

func TestVerifyAccessToken_InactiveToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)

	_, err := client.VerifyAccessToken(context.Background(), "expired")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrUnauthorized)
	}
}

func TestVerifyAccessToken_EmptyToken(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://localhost:1", 0)

	_, err := client.VerifyAccessToken(context.Background(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrUnauthorized)
	}
}

func TestVerifyAccessToken_CircuitOpen(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{
		BaseURL:        "http://localhost:1",
		IntrospectPath: "/v1/auth/introspect",
		Timeout:        200 * time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	if _, err := client.VerifyAccessToken(context.Background(), "token"); err == nil {
		t.Fatal("expected transport error against closed port")
	}

	_, err := client.VerifyAccessToken(context.Background(), "token")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrDependencyUnavailable)
	}
}
