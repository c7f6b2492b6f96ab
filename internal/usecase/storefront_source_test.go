package usecase

import (
	"context"
	"testing"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStorefront struct {
	product  *domain.RawProduct
	products []domain.RawProduct
	err      error
}

func (s *stubStorefront) FetchProduct(ctx context.Context, handle string) (*domain.RawProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubStorefront) FetchProducts(ctx context.Context) ([]domain.RawProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func graphQLRaw(handle, title string) domain.RawProduct {
	return domain.RawProduct{
		Source:      domain.SourceGraphQL,
		Handle:      handle,
		Title:       title,
		Vendor:      "Suzuki Marine",
		Description: "Lean burn fuel control.",
		Variants: []domain.RawVariant{
			{SKU: handle + "-20", PriceText: "9850.0", InventoryQty: 2, Available: true},
		},
	}
}

func TestStorefrontSource_Product(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles the fetched record", func(t *testing.T) {
		raw := graphQLRaw("suzuki-df90", "Suzuki DF90")
		src := NewStorefrontSource(&stubStorefront{product: &raw})

		p, err := src.Product(ctx, "suzuki-df90")
		require.NoError(t, err)
		assert.Equal(t, "Suzuki", p.Brand)
		assert.Equal(t, 90.0, p.Horsepower)
		assert.Equal(t, domain.PowerMidRange, p.PowerCategory)
		assert.Equal(t, "Lean burn fuel control.", p.Description)
		assert.Equal(t, domain.PriceRange{Min: 9850, Max: 9850}, p.PriceRange)
	})

	t.Run("invalid record reads as not found", func(t *testing.T) {
		raw := graphQLRaw("suzuki-df90", "")
		src := NewStorefrontSource(&stubStorefront{product: &raw})

		_, err := src.Product(ctx, "suzuki-df90")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("client errors pass through", func(t *testing.T) {
		src := NewStorefrontSource(&stubStorefront{err: domain.ErrUpstreamFailure})

		_, err := src.Product(ctx, "suzuki-df90")
		assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	})
}

func TestStorefrontSource_Products(t *testing.T) {
	ctx := context.Background()

	src := NewStorefrontSource(&stubStorefront{products: []domain.RawProduct{
		graphQLRaw("suzuki-df90", "Suzuki DF90A"),
		graphQLRaw("no-title", ""),
		graphQLRaw("suzuki-df2-5", "Suzuki DF2.5"),
	}})

	products, err := src.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "suzuki-df90", products[0].Handle)
	assert.Equal(t, "suzuki-df2-5", products[1].Handle)

	_, err = NewStorefrontSource(&stubStorefront{err: domain.ErrUpstreamFailure}).Products(ctx)
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}
