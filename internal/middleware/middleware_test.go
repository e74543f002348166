package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected wrapped handler to run, got status %d", rr.Code)
	}

	expected := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"Cache-Control":                "no-store, no-cache, must-revalidate",
		"Pragma":                       "no-cache",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
		"X-XSS-Protection":             "1; mode=block",
		"Content-Security-Policy":      BoardContentSecurityPolicy,
	}
	for header, want := range expected {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}
	if !strings.Contains(BoardContentSecurityPolicy, "style-src 'self' 'unsafe-inline'") {
		t.Error("expected inline styles to be allowed")
	}
}

func TestCachedPromHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_board_refreshes_total",
		Help: "Test counter",
	})
	registry.MustRegister(counter)
	counter.Inc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewCachedPromHandler(ctx, registry, time.Hour, nil)

	// Empty cache falls back to the live handler.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "test_board_refreshes_total 1") {
		t.Fatalf("expected live exposition, got %q", rr.Body.String())
	}

	if err := h.refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	counter.Inc()

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "test_board_refreshes_total 1") {
		t.Errorf("expected cached exposition, got %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain content type, got %q", ct)
	}
}

func TestCachedPromHandlerLogsGatherErrors(t *testing.T) {
	failing := prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		return nil, errors.New("collector exploded")
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewCachedPromHandler(ctx, failing, time.Hour, logger)

	h.refreshOrReport()

	if !strings.Contains(logs.String(), "Failed to refresh cached metrics") || !strings.Contains(logs.String(), "collector exploded") {
		t.Errorf("expected gather error to be logged, got %q", logs.String())
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.cache) != 0 {
		t.Errorf("expected cache to stay empty after a failed refresh")
	}
}

func TestSentryMiddlewareAttachesHub(t *testing.T) {
	var sawHub bool
	handler := SentryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHub = sentry.GetHubFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/departures", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected wrapped handler status, got %d", rr.Code)
	}
	if !sawHub {
		t.Error("expected a request hub in the context")
	}
}

func TestSentryMiddlewareRepanics(t *testing.T) {
	handler := SentryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render failed")
	}))

	defer func() {
		if recover() == nil {
			t.Error("expected the panic to propagate")
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
