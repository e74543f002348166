package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"

	"departures.metroboard.org/internal/middleware"
)

// Routes sets up the HTTP routing configuration for the application and returns the final http.Handler.
//
// Registered Routes:
//   - GET /:
//     The departure board as HTML, one table per stop grouping plus the status line.
//   - GET /v1/departures:
//     The same rows and the refresh status as JSON.
//   - GET /v1/healthcheck:
//     A JSON snapshot of the application's health and readiness.
//   - GET /metrics:
//     Prometheus metrics through a cached handler that re-gathers every 10 seconds.
//     The refresh loop of the cached handler stops when ctx is cancelled.
//
// The router is wrapped with middleware.SentryMiddleware and middleware.SecurityHeaders.
//
// Usage:
//
//	server := &http.Server{
//	    Addr:    ":4000",
//	    Handler: app.Routes(ctx),
//	}
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/", app.boardHandler)
	router.HandlerFunc(http.MethodGet, "/v1/departures", app.departuresHandler)
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second, app.Logger))

	handler := middleware.SentryMiddleware(router)
	return middleware.SecurityHeaders(handler)
}
