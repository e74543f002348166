package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OvapiStatus API Status (up/down) per stop code
	OvapiStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ovapi_stop_status",
			Help: "Status of the last OVapi request for a stop code (0 = failed, 1 = ok)",
		},
		[]string{"stop_code"},
	)

	// OutgoingLatency tracks the duration of every outgoing HTTP request.
	OutgoingLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outgoing_http_request_duration_seconds",
			Help:    "Latency of outgoing HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"url", "method", "status"},
	)
)

var (
	RefreshCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_refresh_cycles_total",
		Help: "Number of completed refresh cycles by outcome (success, failure)",
	}, []string{"outcome"})

	GroupingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_grouping_fetch_failures_total",
		Help: "Number of failed departure fetches per stop grouping",
	}, []string{"target_id"})

	RenderedRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "board_rendered_rows",
		Help: "Number of departure rows currently rendered per stop grouping",
	}, []string{"target_id"})

	LastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "board_last_success_timestamp_seconds",
		Help: "Unix time of the last fully successful refresh cycle",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "board_refresh_cycle_duration_seconds",
		Help:    "Wall time of one refresh cycle, fetch through render",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// Outcome labels used with RefreshCycles.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
