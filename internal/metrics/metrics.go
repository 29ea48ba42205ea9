// Package metrics exposes Prometheus collectors for the console service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll outcomes recorded per status fetch.
const (
	PollOutcomeOK    = "ok"
	PollOutcomeError = "error"
)

// Step advance reasons: backend catch-up versus the synthetic timer.
const (
	AdvanceReasonBackend = "backend"
	AdvanceReasonTimer   = "timer"
)

var (
	statusPollsTotal           *prometheus.CounterVec
	stepAdvancesTotal          *prometheus.CounterVec
	redirectsTotal             prometheus.Counter
	activeWatchers             prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		statusPollsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_status_polls_total",
				Help: "Total status fetches issued, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		stepAdvancesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_step_advances_total",
				Help: "Display step advances, labeled by reason.",
			},
			[]string{"reason"},
		)

		redirectsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_report_redirects_total",
				Help: "Completed audits that triggered the delayed report redirect.",
			},
		)

		activeWatchers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_active_watchers",
				Help: "Number of job views currently being polled.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePoll increments the poll counter for the given outcome.
func ObservePoll(outcome string) {
	Init()
	statusPollsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStepAdvance increments the step advance counter for the given reason.
func ObserveStepAdvance(reason string) {
	Init()
	stepAdvancesTotal.WithLabelValues(reason).Inc()
}

// ObserveRedirect counts one completed-audit redirect.
func ObserveRedirect() {
	Init()
	redirectsTotal.Inc()
}

// SetActiveWatchers records the current number of open job views.
func SetActiveWatchers(n int) {
	Init()
	activeWatchers.Set(float64(n))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
