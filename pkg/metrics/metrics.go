// Package metrics provides the Prometheus registry used by the product API.
// Metrics are defined in their respective packages (cache, client) to keep
// those packages self-contained.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - product_cache_hits_total (Counter): Cache hits
//   - product_cache_misses_total{reason} (Counter): Misses by reason (absent, falsy, invalid)
//   - product_cache_errors_total{operation} (Counter): Store errors by operation
//   - product_cache_coalesced_total (Counter): Callers served by a shared in-flight computation
//   - product_cache_stored_bytes_total (Counter): Bytes written to the store
//
// Upstream Metrics (pkg/client):
//   - paapi_requests_total{operation, status} (Counter): Requests by operation and HTTP status
//   - paapi_request_duration_seconds{operation} (Histogram): Request duration by operation
//   - paapi_errors_total{class} (Counter): Errors by class (client, throttled, server, network, decode)
//
// Catalog Metrics (pkg/catalog):
//   - product_provider_failures_total{source} (Counter): Provider failures swallowed by search
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(product_cache_hits_total[5m])) /
//   (sum(rate(product_cache_hits_total[5m])) + sum(rate(product_cache_misses_total[5m])))
//
//   # Upstream Throttling
//   rate(paapi_errors_total{class="throttled"}[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(paapi_request_duration_seconds_bucket[5m]))
