package catalog

import (
	"fmt"
	"sort"
)

// InvalidSourceError is returned for a source tag with no registered provider.
type InvalidSourceError struct {
	Source string
}

// Error implements the error interface.
func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source: %s", e.Source)
}

// Registry maps source tags to providers. It is built at startup and read-only
// afterwards.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers providers under their Source tag.
// A later provider with the same tag replaces an earlier one.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Source()] = p
	}
	return r
}

// Lookup returns the provider for source.
func (r *Registry) Lookup(source string) (Provider, error) {
	p, ok := r.providers[source]
	if !ok {
		return nil, &InvalidSourceError{Source: source}
	}
	return p, nil
}

// Sources returns the registered tags in sorted order.
func (r *Registry) Sources() []string {
	sources := make([]string, 0, len(r.providers))
	for source := range r.providers {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}
