package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"departures.metroboard.org/internal/metrics"
)

// latencyTrackingRoundTripper wraps another RoundTripper and records the
// latency of every outgoing request in metrics.OutgoingLatency, labelled by
// URL (without query), method and response status.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface.
func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	// Default to "error" if the request failed or response is nil
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(
		safeURL,
		req.Method,
		status,
	).Observe(duration)

	return resp, err
}

// NewPooledClient returns an HTTP client for polling OVapi once a minute.
//
// Configuration:
//
//   - MaxIdleConns: 100, MaxIdleConnsPerHost: 10
//     Every grouping fetches its stop codes in parallel against the same
//     host, so several keep-alive connections per host are reused.
//
//   - IdleConnTimeout: 90s
//     Longer than the refresh interval, so connections survive between cycles.
//
//   - DialContext (Timeout: 5s, KeepAlive: 30s), TLSHandshakeTimeout: 5s
//     Fail fast when OVapi is unreachable.
//
//   - http.Client Timeout: timeout
//     Upper bound for a whole request. The per-fetch deadline of the
//     aggregator is usually the tighter one.
//
// The transport is wrapped with latencyTrackingRoundTripper.
func NewPooledClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	instrumentedTransport := &latencyTrackingRoundTripper{next: transport}

	client := &http.Client{
		Transport: instrumentedTransport,
		Timeout:   timeout,
	}
	return client
}
