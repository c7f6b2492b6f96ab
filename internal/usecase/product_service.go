package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/rs/zerolog/log"
)

const (
	productKeyPrefix = "product:"
	catalogKey       = "catalog:all"
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
}

// ProductService serves canonical products with caching
type ProductService struct {
	cache    domain.CacheRepository
	source   domain.ProductSource
	cacheTTL time.Duration
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	cache domain.CacheRepository,
	source domain.ProductSource,
	config ProductServiceConfig,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	return &ProductService{
		cache:    cache,
		source:   source,
		cacheTTL: cacheTTL,
	}
}

// GetProduct looks up one product by handle.
// Flow: check cache -> ask source -> cache -> return
func (s *ProductService) GetProduct(ctx context.Context, handle string) (*domain.Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, domain.ErrInvalidRequest
	}

	key := productKeyPrefix + handle
	var cached domain.Product
	if s.getFromCache(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.source.Product(ctx, handle)
	if err != nil {
		return nil, err
	}

	s.setInCache(ctx, key, product)
	return product, nil
}

// ListProducts returns every product matching the filter
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	if !s.getFromCache(ctx, catalogKey, &products) {
		var err error
		products, err = s.source.Products(ctx)
		if err != nil {
			return nil, err
		}
		s.setInCache(ctx, catalogKey, products)
	}

	matched := make([]domain.Product, 0, len(products))
	for i := range products {
		if filter.Matches(&products[i]) {
			matched = append(matched, products[i])
		}
	}
	return matched, nil
}

// getFromCache decodes a cached entry into out and reports a hit
func (s *ProductService) getFromCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt cache entry")
		observability.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	observability.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

// setInCache stores a value; failures are logged and otherwise ignored
func (s *ProductService) setInCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
	}
}
