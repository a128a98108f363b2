package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/paapi-product-cache/pkg/cache"
	"github.com/Sternrassler/paapi-product-cache/pkg/logging"
)

const (
	// KeyNamespace prefixes every catalog cache key.
	KeyNamespace = "products"

	// SearchTTL is how long search results stay cached.
	SearchTTL = 900 * time.Second

	// DetailTTL is how long product details stay cached.
	DetailTTL = 1800 * time.Second
)

var providerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "product_provider_failures_total",
	Help: "Provider search failures replaced by empty results, by source",
}, []string{"source"})

// Service answers product searches and detail lookups through the cache.
type Service struct {
	aside    *cache.Aside
	registry *Registry
}

// NewService creates a catalog service.
func NewService(aside *cache.Aside, registry *Registry) *Service {
	if aside == nil {
		panic("cache aside cannot be nil")
	}
	if registry == nil {
		panic("provider registry cannot be nil")
	}
	return &Service{
		aside:    aside,
		registry: registry,
	}
}

// Registry returns the provider registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// SearchKey returns the cache key for a search query. Queries differing only
// in case or surrounding whitespace share a key.
func SearchKey(query string) string {
	return cache.Key{
		Namespace: KeyNamespace,
		Segments:  []string{"search", strings.ToLower(strings.TrimSpace(query))},
	}.String()
}

// DetailKey returns the cache key for one product.
func DetailKey(source, id string) string {
	return cache.Key{
		Namespace: KeyNamespace,
		Segments:  []string{"detail", source, id},
	}.String()
}

// SearchProducts searches every registered provider. A failing provider
// contributes an empty list. Cache failures and the caller's context ending
// are returned as errors, and nothing is cached in that case.
func (s *Service) SearchProducts(ctx context.Context, query string) (SearchResult, error) {
	return cache.GetOrSet(ctx, s.aside, SearchKey(query), func(ctx context.Context) (SearchResult, error) {
		return s.searchAll(ctx, query)
	}, SearchTTL)
}

func (s *Service) searchAll(ctx context.Context, query string) (SearchResult, error) {
	var (
		mu     sync.Mutex
		result = make(SearchResult, s.registry.Len())
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, source := range s.registry.Sources() {
		source := source
		provider, _ := s.registry.Lookup(source)
		g.Go(func() error {
			products, err := provider.Search(gctx, query)
			if err != nil {
				// An empty list stands in for a provider failure, not for a
				// request that ran out of time.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				providerFailures.WithLabelValues(source).Inc()
				logger := logging.FromContext(ctx, "catalog")
				logger.Warn().Err(err).
					Str("source", source).
					Str("query", query).
					Msg("Provider search failed")
				products = nil
			}
			if products == nil {
				products = []ProductRecord{}
			}

			mu.Lock()
			result[source] = products
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetProductByID returns one product from source. An unknown source fails
// with *InvalidSourceError before any provider or cache access. A nil record
// with a nil error means the provider has no such item.
func (s *Service) GetProductByID(ctx context.Context, source, id string) (*ProductRecord, error) {
	provider, err := s.registry.Lookup(source)
	if err != nil {
		return nil, err
	}

	return cache.GetOrSet(ctx, s.aside, DetailKey(source, id), func(ctx context.Context) (*ProductRecord, error) {
		product, err := provider.GetByID(ctx, id)
		if err != nil {
			logger := logging.FromContext(ctx, "catalog")
			logger.Warn().Err(err).
				Str("source", source).
				Str("id", id).
				Msg("Provider lookup failed")
			return nil, err
		}
		return product, nil
	}, DetailTTL)
}
