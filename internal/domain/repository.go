package domain

import (
	"context"
	"io"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded payloads so memory and redis backends behave alike.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductSource produces canonical products for the service layer.
// Implementations: storefront (GraphQL + assembly) and static (catalog artifact).
type ProductSource interface {
	Product(ctx context.Context, handle string) (*Product, error)
	Products(ctx context.Context) ([]Product, error)
}

// CatalogSink persists a finished catalog build (optional snapshot store)
type CatalogSink interface {
	SaveCatalog(ctx context.Context, products []Product) error
}

// StorefrontClient fetches products from the upstream commerce API,
// already decoded into the shape-agnostic intermediate
type StorefrontClient interface {
	FetchProduct(ctx context.Context, handle string) (*RawProduct, error)
	FetchProducts(ctx context.Context) ([]RawProduct, error)
}

// ExportDecoder decodes a bulk product export into raw products in
// first-seen handle order
type ExportDecoder interface {
	Decode(r io.Reader) ([]RawProduct, []RowError, error)
}
