package shopify

import (
	"strings"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/rs/zerolog/log"
)

// defaultVariantTitle is the title upstream gives the only variant of a
// product without options
const defaultVariantTitle = "Default Title"

// GraphQL weight units mapped to display units
var graphQLWeightUnits = map[string]string{
	"POUNDS":    "lb",
	"KILOGRAMS": "kg",
	"GRAMS":     "g",
	"OUNCES":    "oz",
}

// DecodeProductNode converts a product node from either query shape into a
// RawProduct. Images without a URL are skipped; a metafields field of an
// unexpected shape degrades to "no metafields".
func DecodeProductNode(node *ProductNode) (domain.RawProduct, []domain.RowError) {
	if node == nil {
		return domain.RawProduct{Source: domain.SourceGraphQL}, nil
	}

	raw := domain.RawProduct{
		Source:      domain.SourceGraphQL,
		Handle:      strings.TrimSpace(node.Handle),
		Title:       strings.TrimSpace(node.Title),
		Vendor:      strings.TrimSpace(node.Vendor),
		Type:        strings.TrimSpace(node.ProductType),
		Description: node.Description,
		BodyHTML:    node.DescriptionHTML,
		Tags:        []string(node.Tags),
		Published:   true,
	}
	var skipped []domain.RowError

	for i, img := range node.Images.Items {
		src := img.Location()
		if src == "" {
			skipped = append(skipped, domain.RowError{Handle: raw.Handle, Row: i + 1, Reason: "image without url"})
			continue
		}
		raw.Images = append(raw.Images, domain.RawImage{Src: src, Position: i + 1, Alt: img.AltText})
	}

	if err := node.Metafields.ShapeErr; err != nil {
		observability.UpstreamShapeErrors.Inc()
		log.Warn().Err(err).Str("handle", raw.Handle).Msg("ignoring metafields")
	}
	for _, mf := range node.Metafields.Items {
		raw.Metafields = append(raw.Metafields, domain.RawMetafield{
			Namespace: mf.Namespace,
			Key:       mf.Key,
			Value:     mf.Value,
		})
	}

	if err := node.Images.ShapeErr; err != nil {
		observability.UpstreamShapeErrors.Inc()
		log.Warn().Err(err).Str("handle", raw.Handle).Msg("ignoring images")
	}
	if err := node.Variants.ShapeErr; err != nil {
		observability.UpstreamShapeErrors.Inc()
		log.Warn().Err(err).Str("handle", raw.Handle).Msg("ignoring variants")
	}

	for _, v := range node.Variants.Items {
		raw.Variants = append(raw.Variants, decodeVariantNode(v, node.Options))
	}

	return raw, skipped
}

// decodeVariantNode maps one variant. Option names come from selectedOptions
// (list query) or the product-level options (single-product query); option
// values fall back to the "A / B" variant title.
func decodeVariantNode(v VariantNode, options []ProductOption) domain.RawVariant {
	inventory := 0
	if v.QuantityAvailable != nil {
		inventory = *v.QuantityAvailable
	}

	sku := strings.TrimSpace(v.SKU)
	if sku == "" {
		sku = variantIDFromGID(v.ID)
	}

	raw := domain.RawVariant{
		SKU:                sku,
		PriceText:          v.Price.Amount,
		CompareAtPriceText: v.CompareAtPrice.Amount,
		InventoryQty:       inventory,
		Weight:             v.Weight,
		WeightUnit:         graphQLWeightUnits[strings.ToUpper(v.WeightUnit)],
		Barcode:            v.Barcode,
		Taxable:            v.Taxable,
		RequiresShipping:   v.RequiresShipping,
		Available:          v.AvailableForSale,
	}

	names := make([]string, 2)
	values := make([]string, 2)
	for i := 0; i < 2; i++ {
		if i < len(v.SelectedOptions) {
			names[i] = v.SelectedOptions[i].Name
			values[i] = v.SelectedOptions[i].Value
		}
		if names[i] == "" && i < len(options) {
			names[i] = options[i].Name
		}
	}
	if values[0] == "" && values[1] == "" && v.Title != "" && v.Title != defaultVariantTitle {
		parts := strings.Split(v.Title, " / ")
		for i := 0; i < 2 && i < len(parts); i++ {
			values[i] = strings.TrimSpace(parts[i])
		}
	}

	raw.Option1Name, raw.Option1Value = optionPair(names[0], values[0])
	raw.Option2Name, raw.Option2Value = optionPair(names[1], values[1])
	return raw
}

// optionPair drops the placeholder option of single-variant products
func optionPair(name, value string) (string, string) {
	if name == "Title" && value == defaultVariantTitle {
		return "", ""
	}
	if value == "" {
		return "", ""
	}
	return name, value
}

// variantIDFromGID returns the trailing id of "gid://shopify/ProductVariant/123"
func variantIDFromGID(gid string) string {
	gid = strings.TrimSpace(gid)
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}
