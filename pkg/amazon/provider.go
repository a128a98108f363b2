// Package amazon implements the catalog provider backed by the Product
// Advertising API 5.
package amazon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/paapi-product-cache/pkg/catalog"
	"github.com/Sternrassler/paapi-product-cache/pkg/logging"
)

const (
	// Source is the catalog tag for this provider.
	Source = "amazon"

	// DefaultMarketplace is used when Config.Marketplace is empty.
	DefaultMarketplace = "www.amazon.com"

	// DefaultItemCount is the number of search results requested.
	DefaultItemCount = 10

	// MaxItemCount is the SearchItems upper bound.
	MaxItemCount = 10

	partnerTypeAssociates = "Associates"
	searchIndexAll        = "All"
)

// Resources requested by SearchItems.
var searchResources = []string{
	"Images.Primary.Large",
	"ItemInfo.Title",
	"ItemInfo.Features",
	"Offers.Listings.Price",
	"Offers.Listings.Availability.Message",
}

// Resources requested by GetItems.
var detailResources = []string{
	"Images.Primary.Large",
	"Images.Variants.Large",
	"ItemInfo.Title",
	"ItemInfo.Features",
	"ItemInfo.ProductInfo",
	"Offers.Listings.Price",
	"Offers.Listings.Availability.Message",
	"Offers.Listings.DeliveryInfo.IsPrimeEligible",
}

// Caller sends one signed PA-API operation. *client.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, operation string, payload any, out any) error
}

// Config configures a Provider.
type Config struct {
	// PartnerTag is the Associates tag sent with every request and appended
	// to product URLs.
	PartnerTag string

	// Marketplace is the PA-API marketplace host, e.g. www.amazon.com.
	Marketplace string

	// ItemCount is the number of search results requested (1-10).
	ItemCount int
}

// Provider searches and looks up Amazon products.
type Provider struct {
	caller      Caller
	partnerTag  string
	marketplace string
	itemCount   int
	logger      zerolog.Logger
}

var _ catalog.Provider = (*Provider)(nil)

// NewProvider creates an Amazon provider sending requests through caller.
func NewProvider(caller Caller, cfg Config) *Provider {
	if caller == nil {
		panic("PA-API caller cannot be nil")
	}

	marketplace := cfg.Marketplace
	if marketplace == "" {
		marketplace = DefaultMarketplace
	}

	logger := logging.NewLogger("amazon")
	if cfg.PartnerTag == "" {
		logger.Warn().Msg("No partner tag configured, PA-API will reject requests")
	}

	return &Provider{
		caller:      caller,
		partnerTag:  cfg.PartnerTag,
		marketplace: marketplace,
		itemCount:   clampItemCount(cfg.ItemCount),
		logger:      logger,
	}
}

func clampItemCount(n int) int {
	switch {
	case n <= 0:
		return DefaultItemCount
	case n > MaxItemCount:
		return MaxItemCount
	default:
		return n
	}
}

// Source implements catalog.Provider.
func (p *Provider) Source() string {
	return Source
}

// Search runs SearchItems for query.
func (p *Provider) Search(ctx context.Context, query string) ([]catalog.ProductRecord, error) {
	req := searchItemsRequest{
		Keywords:    query,
		Resources:   searchResources,
		SearchIndex: searchIndexAll,
		ItemCount:   p.itemCount,
		PartnerTag:  p.partnerTag,
		PartnerType: partnerTypeAssociates,
		Marketplace: p.marketplace,
	}

	var resp searchItemsResponse
	if err := p.caller.Call(ctx, "SearchItems", req, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var items []item
	if resp.SearchResult != nil {
		items = resp.SearchResult.Items
	}

	products := make([]catalog.ProductRecord, 0, len(items))
	for _, it := range items {
		products = append(products, p.formatItem(it))
	}

	p.logger.Debug().
		Str("query", query).
		Int("count", len(products)).
		Msg("SearchItems completed")

	return products, nil
}

// GetByID runs GetItems for one ASIN. It returns nil when PA-API has no item.
func (p *Provider) GetByID(ctx context.Context, asin string) (*catalog.ProductRecord, error) {
	req := getItemsRequest{
		ItemIDs:     []string{asin},
		Resources:   detailResources,
		PartnerTag:  p.partnerTag,
		PartnerType: partnerTypeAssociates,
		Marketplace: p.marketplace,
	}

	var resp getItemsResponse
	if err := p.caller.Call(ctx, "GetItems", req, &resp); err != nil {
		return nil, fmt.Errorf("get item %s: %w", asin, err)
	}

	if resp.ItemsResult == nil || len(resp.ItemsResult.Items) == 0 {
		p.logger.Debug().Str("asin", asin).Msg("Item not found")
		return nil, nil
	}

	product := p.formatItem(resp.ItemsResult.Items[0])
	return &product, nil
}

// formatItem normalizes one PA-API item. Missing or zero-valued fields fall
// back to the record defaults.
func (p *Provider) formatItem(it item) catalog.ProductRecord {
	record := catalog.ProductRecord{
		Source:   Source,
		ID:       it.ASIN,
		Title:    "Untitled",
		Currency: "USD",
		Features: []string{},
		URL:      fmt.Sprintf("https://%s/dp/%s?tag=%s", p.marketplace, it.ASIN, p.partnerTag),
		ASIN:     it.ASIN,
	}

	if info := it.ItemInfo; info != nil {
		if info.Title != nil && info.Title.DisplayValue != "" {
			record.Title = info.Title.DisplayValue
		}
		if info.Features != nil && len(info.Features.DisplayValues) > 0 {
			record.Features = info.Features.DisplayValues
		}
	}

	if img := it.Images; img != nil && img.Primary != nil && img.Primary.Large != nil && img.Primary.Large.URL != "" {
		record.Image = stringPtr(img.Primary.Large.URL)
	}

	if it.Offers != nil && len(it.Offers.Listings) > 0 {
		listing := it.Offers.Listings[0]
		if price := listing.Price; price != nil {
			if price.DisplayAmount != "" {
				record.Price = stringPtr(price.DisplayAmount)
			}
			if price.Amount != 0 {
				amount := price.Amount
				record.PriceValue = &amount
			}
			if price.Currency != "" {
				record.Currency = price.Currency
			}
		}
		if listing.Availability != nil && listing.Availability.Message != "" {
			record.Availability = stringPtr(listing.Availability.Message)
		}
		if listing.DeliveryInfo != nil {
			record.IsPrime = listing.DeliveryInfo.IsPrimeEligible
		}
	}

	return record
}

func stringPtr(s string) *string {
	return &s
}
