// Package metrics exposes Prometheus collectors for the ingestor.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the "outcome" label of govjobs_runs_total.
const (
	RunCompleted = "completed"
	RunRejected  = "rejected"
)

var (
	runsTotal                  *prometheus.CounterVec
	runDurationSeconds         prometheus.Histogram
	runActive                  prometheus.Gauge
	sourceNoticesTotal         *prometheus.CounterVec
	sourceFailuresTotal        *prometheus.CounterVec
	fetchTotal                 *prometheus.CounterVec
	fetchBytesTotal            *prometheus.CounterVec
	pacerWaitSeconds           prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the Prometheus collectors. The Observe helpers call it
// themselves, so callers only need it before reading collectors directly.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govjobs_runs_total",
				Help: "Ingestion runs, labeled by outcome (completed or rejected).",
			},
			[]string{"outcome"},
		)

		runDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "govjobs_run_duration_seconds",
				Help:    "Wall time of completed ingestion runs.",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
			},
		)

		runActive = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "govjobs_run_active",
				Help: "1 while an ingestion run is in progress.",
			},
		)

		sourceNoticesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govjobs_source_notices_total",
				Help: "Notices handled per source, labeled by outcome (fetched, saved, skipped, error).",
			},
			[]string{"source", "outcome"},
		)

		sourceFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govjobs_source_failures_total",
				Help: "Adapters that failed outright during a run.",
			},
			[]string{"source"},
		)

		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govjobs_fetch_total",
				Help: "Page fetches, labeled by host and HTTP status (or error).",
			},
			[]string{"host", "status"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govjobs_fetch_bytes_total",
				Help: "Bytes fetched, labeled by host.",
			},
			[]string{"host"},
		)

		pacerWaitSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "govjobs_pacer_wait_seconds",
				Help:    "Time spent waiting between adapters.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
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
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records a finished run.
func ObserveRun(duration time.Duration) {
	Init()
	runsTotal.WithLabelValues(RunCompleted).Inc()
	runDurationSeconds.Observe(duration.Seconds())
}

// ObserveRejectedRun records a trigger that found another run in progress.
func ObserveRejectedRun() {
	Init()
	runsTotal.WithLabelValues(RunRejected).Inc()
}

// SetRunActive flips the active-run gauge.
func SetRunActive(active bool) {
	Init()
	if active {
		runActive.Set(1)
		return
	}
	runActive.Set(0)
}

// ObserveSourceNotices adds n to the per-source counter for outcome.
func ObserveSourceNotices(source, outcome string, n int) {
	if n <= 0 {
		return
	}
	Init()
	sourceNoticesTotal.WithLabelValues(source, outcome).Add(float64(n))
}

// ObserveSourceFailure counts an adapter that failed outright.
func ObserveSourceFailure(source string) {
	Init()
	sourceFailuresTotal.WithLabelValues(source).Inc()
}

// ObserveFetch records one page fetch. A status of 0 means the request failed
// before a response arrived.
func ObserveFetch(rawURL string, status int, bytesFetched int) {
	Init()
	host := SanitizeSite(rawURL)
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	fetchTotal.WithLabelValues(host, label).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(host).Add(float64(bytesFetched))
	}
}

// ObservePacerWait records the delay spent between adapters.
func ObservePacerWait(d time.Duration) {
	Init()
	pacerWaitSeconds.Observe(d.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
