package domain

import (
	"maps"
	"slices"
)

// Category is the fixed classification for every product in the catalog
const Category = "outboard"

// Defaults applied by the assembler when upstream leaves a field empty
const (
	DefaultStatus      = "active"
	DefaultProductType = "Outboard Motor"
	UnknownBrand       = "Unknown"
)

// PowerCategory is a coarse horsepower-derived classification used for navigation
type PowerCategory string

const (
	PowerPortable        PowerCategory = "portable"
	PowerMidRange        PowerCategory = "mid-range"
	PowerHighPerformance PowerCategory = "high-performance"
	PowerCommercial      PowerCategory = "commercial"
)

// Product is the canonical catalog record served to the presentation layer.
// It is built once per catalog build or single-item fetch and never mutated.
type Product struct {
	ID            string            `json:"id"`
	Handle        string            `json:"handle"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	BodyHTML      string            `json:"bodyHtml,omitempty"`
	Vendor        string            `json:"vendor"`
	Brand         string            `json:"brand"`
	Type          string            `json:"type"`
	Tags          []string          `json:"tags"`
	Category      string            `json:"category"`
	PowerCategory PowerCategory     `json:"powerCategory"`
	Horsepower    float64           `json:"horsepower"`
	Variants      []Variant         `json:"variants"`
	PriceRange    PriceRange        `json:"priceRange"`
	InStock       bool              `json:"inStock"`
	Status        string            `json:"status"`
	Condition     string            `json:"condition,omitempty"`
	Images        []Image           `json:"images"`
	Specs         map[string]string `json:"specs"`
}

// Clone returns a deep copy; slices and the specs map are not shared
func (p Product) Clone() Product {
	p.Tags = slices.Clone(p.Tags)
	p.Variants = slices.Clone(p.Variants)
	p.Images = slices.Clone(p.Images)
	p.Specs = maps.Clone(p.Specs)
	return p
}

// Variant is one purchasable SKU-level configuration of a product
type Variant struct {
	SKU              string  `json:"sku"`
	Option1Name      string  `json:"option1Name,omitempty"`
	Option1Value     string  `json:"option1Value,omitempty"`
	Option2Name      string  `json:"option2Name,omitempty"`
	Option2Value     string  `json:"option2Value,omitempty"`
	Price            float64 `json:"price"`
	CompareAtPrice   float64 `json:"compareAtPrice"`
	Weight           float64 `json:"weight"`
	WeightUnit       string  `json:"weightUnit,omitempty"`
	Inventory        int     `json:"inventory"`
	Available        bool    `json:"available"`
	Taxable          bool    `json:"taxable"`
	RequiresShipping bool    `json:"requiresShipping"`
	CostPerItem      float64 `json:"costPerItem"`
	Barcode          string  `json:"barcode,omitempty"`
}

// OnSale reports whether the variant is discounted against its compare-at price
func (v Variant) OnSale() bool {
	return v.CompareAtPrice > v.Price
}

// PriceRange holds the min/max positive variant price, or zeros when none is priced
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Image is a product image, unique by Src within a product
type Image struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
	Alt      string `json:"alt"`
}

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	Brand         string        `form:"brand"`
	PowerCategory PowerCategory `form:"powerCategory"`
	InStock       *bool         `form:"inStock"`
	MinHorsepower float64       `form:"minHp"`
	MaxHorsepower float64       `form:"maxHp"`
}

// Matches reports whether p satisfies every constraint set on the filter
func (f ProductFilter) Matches(p *Product) bool {
	if f.Brand != "" && f.Brand != p.Brand {
		return false
	}
	if f.PowerCategory != "" && f.PowerCategory != p.PowerCategory {
		return false
	}
	if f.InStock != nil && *f.InStock != p.InStock {
		return false
	}
	if f.MinHorsepower > 0 && p.Horsepower < f.MinHorsepower {
		return false
	}
	if f.MaxHorsepower > 0 && p.Horsepower > f.MaxHorsepower {
		return false
	}
	return true
}
