package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"departures.metroboard.org/internal/report"
)

// CachedPromHandler serves a Prometheus text exposition that is regenerated
// every ttl instead of on every scrape.
//
// The board refreshes once a minute, so gathering on each scrape only repeats
// work. Until the first exposition has been encoded, requests fall through to
// a live promhttp handler.
type CachedPromHandler struct {
	mu       sync.RWMutex
	cache    []byte
	ttl      time.Duration
	gatherer prometheus.Gatherer
	live     http.Handler
	logger   *slog.Logger
}

// NewCachedPromHandler creates the handler and starts the refresh loop, which
// runs until ctx is cancelled. Failed refreshes are logged to logger and
// reported to Sentry.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration, logger *slog.Logger) *CachedPromHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &CachedPromHandler{
		ttl:      ttl,
		gatherer: gatherer,
		live:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		logger:   logger,
	}

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshOrReport()
		}
	}
}

func (c *CachedPromHandler) refreshOrReport() {
	if err := c.refresh(); err != nil {
		c.logger.Error("Failed to refresh cached metrics", "error", err)
		report.ReportError(err)
	}
}

// refresh gathers all metric families and re-encodes the cached exposition.
// On a gather error the previous exposition is kept.
func (c *CachedPromHandler) refresh() error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.cache = buf.Bytes()
	c.mu.Unlock()
	return nil
}

// ServeHTTP implements http.Handler.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	cached := c.cache
	c.mu.RUnlock()

	if len(cached) == 0 {
		c.live.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(cached)
}
