package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/paapi-product-cache/pkg/logging"
)

// Options configures an Aside.
type Options struct {
	// HitPolicy decides which stored values count as hits.
	HitPolicy HitPolicy

	// Coalesce makes concurrent misses on the same key share one computation.
	Coalesce bool

	// DegradeOnStoreError computes directly when the store fails instead of
	// returning the StoreError.
	DegradeOnStoreError bool
}

// DefaultOptions returns the options matching the deployed behaviour:
// truthy hits, no coalescing, store errors propagated.
func DefaultOptions() Options {
	return Options{
		HitPolicy: HitTruthy,
	}
}

// Aside implements get-or-compute-and-store over a Store.
type Aside struct {
	store  Store
	opts   Options
	group  singleflight.Group
	logger zerolog.Logger
}

// NewAside creates a cache-aside layer over store.
func NewAside(store Store, opts Options) *Aside {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Aside{
		store:  store,
		opts:   opts,
		logger: logging.NewLogger("cache"),
	}
}

// Options returns the options the Aside was built with.
func (a *Aside) Options() Options {
	return a.opts
}

// Get decodes the value stored under key into dst.
// found is false when the key is absent. The hit policy does not apply here.
func (a *Aside) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return true, nil
}

// Set encodes value as JSON and stores it under key for ttl.
func (a *Aside) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return a.store.Set(ctx, Entry{Key: key, Value: raw, TTL: ttl})
}

// Delete removes key from the store.
func (a *Aside) Delete(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

// GetOrSet returns the cached value for key, or runs compute, stores its
// result for ttl and returns it. A compute error is returned as-is and
// nothing is stored.
func GetOrSet[T any](ctx context.Context, a *Aside, key string, compute func(context.Context) (T, error), ttl time.Duration) (T, error) {
	var zero T

	raw, hit, err := a.lookup(ctx, key)
	if err != nil {
		return zero, err
	}
	if hit {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		CacheMisses.WithLabelValues("invalid").Inc()
		a.logger.Warn().Str("key", key).Msg("Cached value does not match expected type, recomputing")
	}

	raw, err = a.fill(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal cache value: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		return zero, err
	}

	// Every caller decodes its own copy, including coalesced waiters.
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, fmt.Errorf("decode computed value: %w", err)
	}
	return v, nil
}

// lookup reads key and applies the hit policy.
func (a *Aside) lookup(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			CacheMisses.WithLabelValues("absent").Inc()
			a.logger.Debug().Str("key", key).Msg("Cache miss")
			return nil, false, nil
		}
		if a.opts.DegradeOnStoreError {
			a.logger.Warn().Err(err).Str("key", key).Msg("Cache get failed, computing directly")
			return nil, false, nil
		}
		return nil, false, err
	}

	if a.opts.HitPolicy == HitTruthy {
		truthy, err := IsTruthy(raw)
		if err != nil {
			CacheMisses.WithLabelValues("invalid").Inc()
			a.logger.Warn().Err(err).Str("key", key).Msg("Invalid cache entry, recomputing")
			return nil, false, nil
		}
		if !truthy {
			CacheMisses.WithLabelValues("falsy").Inc()
			a.logger.Debug().Str("key", key).Msg("Cache miss (falsy value)")
			return nil, false, nil
		}
	}

	CacheHits.Inc()
	a.logger.Debug().Str("key", key).Msg("Cache hit")
	return raw, true, nil
}

// fill runs compute and stores its result, sharing the run between
// concurrent callers when coalescing is enabled.
func (a *Aside) fill(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	run := func(ctx context.Context) (any, error) {
		raw, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := a.store.Set(ctx, Entry{Key: key, Value: raw, TTL: ttl}); err != nil {
			var storeErr *StoreError
			if !a.opts.DegradeOnStoreError || !errors.As(err, &storeErr) {
				return nil, err
			}
			a.logger.Warn().Err(err).Str("key", key).Msg("Cache set failed, returning uncached value")
			return raw, nil
		}
		a.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached value")
		return raw, nil
	}

	if !a.opts.Coalesce {
		v, err := run(ctx)
		if err != nil {
			return nil, err
		}
		return v.([]byte), nil
	}

	// The shared run outlives whichever caller started it; each caller
	// still stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := a.group.DoChan(key, func() (any, error) {
		return run(shared)
	})
	select {
	case res := <-ch:
		if res.Shared {
			CacheCoalesced.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
