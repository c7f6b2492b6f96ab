package usecase

import (
	"strings"

	"github.com/outboardpro/catalog/internal/domain"
)

// VariantAggregate is the folded result of a product's variant rows/edges
type VariantAggregate struct {
	Variants   []domain.Variant
	PriceRange domain.PriceRange
	InStock    bool
	Skipped    []domain.RowError
}

// AggregateVariants folds raw variants into a SKU-deduplicated variant list.
// Rows without a SKU are product-level rows (image-only CSV rows) and are
// reported as skipped. The first row seen for a SKU wins.
func AggregateVariants(handle string, raws []domain.RawVariant) VariantAggregate {
	agg := VariantAggregate{Variants: make([]domain.Variant, 0, len(raws))}
	seen := make(map[string]bool, len(raws))

	for i, raw := range raws {
		sku := strings.TrimSpace(raw.SKU)
		if sku == "" {
			agg.Skipped = append(agg.Skipped, domain.RowError{Handle: handle, Row: i + 1, Reason: "missing SKU"})
			continue
		}
		if seen[sku] {
			agg.Skipped = append(agg.Skipped, domain.RowError{Handle: handle, Row: i + 1, Reason: "duplicate SKU " + sku})
			continue
		}
		seen[sku] = true
		agg.Variants = append(agg.Variants, toVariant(sku, raw))
	}

	agg.PriceRange = ComputePriceRange(agg.Variants)
	agg.InStock = AnyInStock(agg.Variants)
	return agg
}

// toVariant converts a raw variant, defaulting compareAtPrice to price
func toVariant(sku string, raw domain.RawVariant) domain.Variant {
	price := domain.ParseAmount(raw.PriceText)
	compareAt := domain.ParseAmount(raw.CompareAtPriceText)
	if compareAt <= 0 {
		compareAt = price
	}

	inventory := raw.InventoryQty
	weight := raw.Weight
	if weight < 0 {
		weight = 0
	}

	return domain.Variant{
		SKU:              sku,
		Option1Name:      raw.Option1Name,
		Option1Value:     raw.Option1Value,
		Option2Name:      raw.Option2Name,
		Option2Value:     raw.Option2Value,
		Price:            price,
		CompareAtPrice:   compareAt,
		Weight:           weight,
		WeightUnit:       raw.WeightUnit,
		Inventory:        inventory,
		Available:        raw.Available || inventory > 0,
		Taxable:          raw.Taxable,
		RequiresShipping: raw.RequiresShipping,
		CostPerItem:      domain.ParseAmount(raw.CostPerItemText),
		Barcode:          raw.Barcode,
	}
}

// ComputePriceRange returns min/max over variants priced above zero.
// With no priced variant both bounds are 0.
func ComputePriceRange(variants []domain.Variant) domain.PriceRange {
	var pr domain.PriceRange
	found := false
	for _, v := range variants {
		if v.Price <= 0 {
			continue
		}
		if !found {
			pr.Min, pr.Max = v.Price, v.Price
			found = true
			continue
		}
		if v.Price < pr.Min {
			pr.Min = v.Price
		}
		if v.Price > pr.Max {
			pr.Max = v.Price
		}
	}
	return pr
}

// AnyInStock reports whether any variant has positive inventory
func AnyInStock(variants []domain.Variant) bool {
	for _, v := range variants {
		if v.Inventory > 0 {
			return true
		}
	}
	return false
}
