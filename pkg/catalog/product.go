// Package catalog looks up products across upstream providers and memoizes
// the results in the shared cache.
package catalog

import "context"

// ProductRecord is the normalized product shape every provider returns.
// Nullable upstream fields are pointers and encode as JSON null.
type ProductRecord struct {
	Source       string   `json:"source"`
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Price        *string  `json:"price"`
	PriceValue   *float64 `json:"priceValue"`
	Currency     string   `json:"currency"`
	Image        *string  `json:"image"`
	Availability *string  `json:"availability"`
	IsPrime      bool     `json:"isPrime"`
	Features     []string `json:"features"`
	URL          string   `json:"url"`
	ASIN         string   `json:"asin"`
}

// SearchResult maps a source tag to that provider's search results.
type SearchResult map[string][]ProductRecord

// Provider is an upstream product source.
type Provider interface {
	// Source returns the tag used in keys, routes and SearchResult.
	Source() string

	// Search returns products matching query. An empty slice means no match.
	Search(ctx context.Context, query string) ([]ProductRecord, error)

	// GetByID returns the product with the provider-native id, or nil when
	// the provider has no such item.
	GetByID(ctx context.Context, id string) (*ProductRecord, error)
}
