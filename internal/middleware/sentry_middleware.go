package middleware

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

// sentryDeliveryTimeout bounds how long a panicking request waits for its event to be sent.
const sentryDeliveryTimeout = 2 * time.Second

// SentryMiddleware recovers panics in next, reports them to Sentry with the
// request attached, and re-panics so net/http still logs them. Every request
// hub is tagged with the path and method, so board and API failures group apart.
func SentryMiddleware(next http.Handler) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: true,
		Timeout:         sentryDeliveryTimeout,
	})

	return sentryHandler.Handle(tagRequest(next))
}

func tagRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.Scope().SetTag("http_path", r.URL.Path)
			hub.Scope().SetTag("http_method", r.Method)
		}
		next.ServeHTTP(w, r)
	})
}
