package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "product_cache_hits_total",
			Help: "Total number of product cache hits",
		},
	)

	// CacheMisses tracks cache misses by reason
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_cache_misses_total",
			Help: "Total number of product cache misses",
		},
		[]string{"reason"}, // "absent", "falsy", "invalid"
	)

	// CacheErrors tracks store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_cache_errors_total",
			Help: "Total number of cache store errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	// CacheCoalesced tracks callers that shared an in-flight computation
	CacheCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "product_cache_coalesced_total",
			Help: "Total number of cache misses served by a shared in-flight computation",
		},
	)

	// CacheStoredBytes tracks bytes written to the store
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "product_cache_stored_bytes_total",
			Help: "Total bytes written to the cache store",
		},
	)
)
