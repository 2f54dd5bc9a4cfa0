package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mirror node
	MirrorNodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "mirror_node",
		Name:      "requests_total",
		Help:      "Total mirror node requests by endpoint and status",
	}, []string{"endpoint", "status"})

	MirrorNodeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "explorer",
		Subsystem: "mirror_node",
		Name:      "request_duration_seconds",
		Help:      "Mirror node request duration",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	MirrorNodeRateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "mirror_node",
		Name:      "rate_limit_waits_total",
		Help:      "Requests delayed by the client side rate limiter",
	})

	// Metadata
	GatewayFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "metadata",
		Name:      "gateway_fetches_total",
		Help:      "Metadata fetch attempts by gateway and result",
	}, []string{"gateway", "result"})

	MetadataResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "metadata",
		Name:      "resolved_total",
		Help:      "Metadata resolutions by outcome (success, invalid, timeout, failed)",
	}, []string{"outcome"})

	MetadataCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "metadata",
		Name:      "cache_hits_total",
		Help:      "Metadata lookups served from the cache",
	})

	// Loader
	LoaderChunks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "explorer",
		Subsystem: "loader",
		Name:      "chunks_total",
		Help:      "Metadata chunks loaded",
	})

	LoaderChunkLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "explorer",
		Subsystem: "loader",
		Name:      "chunk_duration_seconds",
		Help:      "Time to resolve one metadata chunk",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
	})
)

// StatusLabel buckets an HTTP status code for the request counters.
func StatusLabel(statusCode int, err error) string {
	switch {
	case err != nil && statusCode == 0:
		return "error"
	case statusCode >= 500:
		return "5xx"
	case statusCode >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
