// Package metrics exposes Prometheus collectors for the digest pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesScraped tracks candidate pages that yielded article text.
	PagesScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbrief_pages_scraped_total",
		Help: "The total number of pages that produced non-empty extractions.",
	})
	// PagesFailed tracks candidate pages whose extraction came back empty.
	PagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbrief_pages_failed_total",
		Help: "The total number of pages whose extraction failed or was filtered.",
	})
	// ProviderAttempts counts generative provider calls, labeled by provider.
	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbrief_provider_attempts_total",
		Help: "The total number of generative provider attempts.",
	}, []string{"provider"})
	// ProviderFailures counts failed generative provider calls, labeled by provider.
	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbrief_provider_failures_total",
		Help: "The total number of failed generative provider attempts.",
	}, []string{"provider"})
	// PointsAccepted counts digest points taken verbatim from model output.
	PointsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbrief_points_accepted_total",
		Help: "The total number of digest points accepted from model output.",
	})
	// PointsBackfilled counts digest points substituted with placeholders.
	PointsBackfilled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbrief_points_backfilled_total",
		Help: "The total number of digest points backfilled from unused sources.",
	})
	// httpRequestDuration records operational endpoint latency.
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsbrief_http_request_duration_seconds",
		Help:    "Duration of HTTP requests handled by the ops server.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// ObserveHTTPRequest records one handled HTTP request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
