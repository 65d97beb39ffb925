// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mendeley_mirror"

// Metrics holds the Prometheus collectors for upstream calls, token
// exchanges, and cache rebuilds.
type Metrics struct {
	// UpstreamRequests counts API calls by endpoint and HTTP status ("error" for transport failures).
	UpstreamRequests *prometheus.CounterVec

	// UpstreamDuration observes API call latency in seconds by endpoint.
	UpstreamDuration *prometheus.HistogramVec

	// TokenRefreshes counts client-credentials exchanges by result.
	TokenRefreshes *prometheus.CounterVec

	// CacheRefreshes counts full crawls by result.
	CacheRefreshes *prometheus.CounterVec

	// CachedArticles is the article count of the last committed cache.
	CachedArticles prometheus.Gauge

	// CrawlYears counts (author, year) windows queried, labeled by whether they were empty.
	CrawlYears *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests independent of the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total Mendeley API requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Mendeley API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		TokenRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Total access token exchanges by result",
		}, []string{"result"}),
		CacheRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_refreshes_total",
			Help:      "Total article cache rebuilds by result",
		}, []string{"result"}),
		CachedArticles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_articles",
			Help:      "Number of articles in the last committed cache",
		}),
		CrawlYears: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_years_total",
			Help:      "Author-year windows queried during crawls",
		}, []string{"empty"}),
	}
}

// NopMetrics returns metrics registered on a private registry, for callers
// that do not expose them.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
