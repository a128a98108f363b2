// Package cache provides the shared cache-aside layer used for product
// lookups, backed by Redis.
//
// The layer has two parts:
//
// - Store: a minimal key/value contract (get, set with TTL, delete).
// RedisStore implements it on go-redis.
// - Aside: get-or-compute-and-store on top of any Store.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	aside := cache.NewAside(cache.NewRedisStore(redisClient), cache.DefaultOptions())
//
//	key := cache.Key{Namespace: "products", Segments: []string{"search", "iphone 15"}}
//
//	result, err := cache.GetOrSet(ctx, aside, key.String(), func(ctx context.Context) (Result, error) {
//		return fetchFromUpstream(ctx)
//	}, 15*time.Minute)
//
// # Hit Policy
//
// By default a stored value only counts as a hit when it is truthy: JSON
// null, false, 0, "", [] and {} are treated as misses and recomputed. This
// matches the behaviour existing deployments rely on. HitPresent treats any
// stored value as a hit.
//
// # Failures
//
// A failed computation is never written (no negative caching), so the next
// call retries the upstream. Store failures surface as *StoreError unless
// Options.DegradeOnStoreError is set, in which case the value is computed
// directly and the failure only logged.
//
// # Concurrency
//
// Without Options.Coalesce, concurrent misses on the same key each run the
// computation and the last write wins. With Coalesce they share a single
// in-flight computation.
//
// # Metrics
//
//   - product_cache_hits_total - Cache hits
//   - product_cache_misses_total{reason} - Misses (absent, falsy, invalid)
//   - product_cache_errors_total{operation} - Store errors
//   - product_cache_coalesced_total - Callers served by a shared computation
//   - product_cache_stored_bytes_total - Bytes written to the store
package cache
