package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCircuitBreakerFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("db bytes"))
	}))
	defer server.Close()

	cbFetcher := NewCircuitBreakerFetcher(NewFetcher())

	db, err := cbFetcher.Fetch(context.Background(), server.URL+"/core.db", Conditional{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = db.Body.Close() }()

	body, _ := io.ReadAll(db.Body)
	if string(body) != "db bytes" {
		t.Errorf("expected 'db bytes', got %q", string(body))
	}
}

func TestCircuitBreakerSoftErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cbFetcher := NewCircuitBreakerFetcher(NewFetcher(WithMaxRetries(0)))
	for range 10 {
		_, err := cbFetcher.Fetch(context.Background(), server.URL+"/missing.db", Conditional{})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}

	for mirror, state := range cbFetcher.BreakerStates() {
		if state != "closed" {
			t.Errorf("breaker for %s is %s after 404s", mirror, state)
		}
	}
}

func TestCircuitBreakerOpensOnFailures(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cbFetcher := NewCircuitBreakerFetcher(NewFetcher(WithMaxRetries(0), WithBaseDelay(0)))

	var lastErr error
	for range 10 {
		_, lastErr = cbFetcher.Fetch(context.Background(), server.URL+"/core.db", Conditional{})
	}
	if !errors.Is(lastErr, ErrUpstreamDown) {
		t.Errorf("last error = %v, want ErrUpstreamDown", lastErr)
	}
	if requests != 5 {
		t.Errorf("requests = %d, want 5 before the breaker opened", requests)
	}

	states := cbFetcher.BreakerStates()
	if len(states) != 1 {
		t.Fatalf("expected one breaker, got %v", states)
	}
	for _, state := range states {
		if state != "open" {
			t.Errorf("state = %s, want open", state)
		}
	}
}

func TestCircuitBreakerMultipleMirrors(t *testing.T) {
	server1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("server1"))
	}))
	defer server1.Close()

	server2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("server2"))
	}))
	defer server2.Close()

	cbFetcher := NewCircuitBreakerFetcher(NewFetcher())
	ctx := context.Background()

	for _, u := range []string{server1.URL, server2.URL} {
		db, err := cbFetcher.Fetch(ctx, u+"/core.db", Conditional{})
		if err != nil {
			t.Fatalf("fetch %s failed: %v", u, err)
		}
		_ = db.Body.Close()
	}

	if states := cbFetcher.BreakerStates(); len(states) != 2 {
		t.Errorf("expected 2 breaker states, got %d", len(states))
	}
}

func TestMirrorHost(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://geo.mirror.pkgbuild.com/core/os/x86_64/core.db", "geo.mirror.pkgbuild.com"},
		{"https://mirror.example.com:8443/arch/extra.db", "mirror.example.com:8443"},
		{"not-a-valid-url", "not-a-valid-url"},
	}

	for _, tt := range tests {
		if got := mirrorHost(tt.url); got != tt.expected {
			t.Errorf("mirrorHost(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}
