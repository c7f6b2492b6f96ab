package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/rs/zerolog/log"
)

// StorefrontSource builds canonical products from the Storefront API
type StorefrontSource struct {
	client domain.StorefrontClient
}

// NewStorefrontSource creates a product source backed by the Storefront API
func NewStorefrontSource(client domain.StorefrontClient) *StorefrontSource {
	return &StorefrontSource{client: client}
}

// Product fetches and assembles one product. A record failing validation
// is reported as not found.
func (s *StorefrontSource) Product(ctx context.Context, handle string) (*domain.Product, error) {
	raw, err := s.client.FetchProduct(ctx, handle)
	if err != nil {
		return nil, err
	}

	res, err := BuildProduct(raw)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			observability.ProductsRejected.WithLabelValues(string(domain.SourceGraphQL)).Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrProductNotFound, err)
		}
		return nil, err
	}
	observability.ProductsBuilt.WithLabelValues(string(domain.SourceGraphQL)).Inc()
	observability.RowsSkipped.WithLabelValues(string(domain.SourceGraphQL)).Add(float64(len(res.Skipped)))
	return &res.Product, nil
}

// Products fetches every product and assembles the valid ones
func (s *StorefrontSource) Products(ctx context.Context) ([]domain.Product, error) {
	raws, err := s.client.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	builder := NewCatalogBuilder(nil, CatalogBuilderConfig{Workers: 1})
	products, report, err := builder.Build(ctx, raws)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("built", report.Built).Int("rejected", len(report.Rejected)).Msg("storefront catalog assembled")
	return products, nil
}
