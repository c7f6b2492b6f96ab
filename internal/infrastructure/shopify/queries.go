package shopify

import (
	"fmt"
	"strings"
)

// specMetafields are the metafields requested by the product list query.
// The Storefront API only returns metafields it is explicitly asked for.
var specMetafields = [][2]string{
	{"engine", "horsepower"},
	{"engine", "engine_type"},
	{"engine", "stroke_type"},
	{"engine", "cylinders"},
	{"engine", "displacement"},
	{"engine", "cooling_system"},
	{"engine", "rpm_range"},
	{"engine", "starting_system"},
	{"physical", "shaft_length"},
	{"physical", "weight"},
	{"mechanical", "gear_ratio"},
	{"mechanical", "alternator_output"},
	{"mechanical", "propeller"},
	{"fuel", "fuel_system"},
	{"fuel", "tank_capacity"},
	{"fuel", "recommended_fuel"},
	{"controls", "starting_system"},
	{"controls", "steering"},
	{"controls", "trim_tilt"},
	{"warranty", "warranty"},
	{"custom", "condition"},
}

const productFields = `
  id
  handle
  title
  description
  descriptionHtml
  vendor
  productType
  tags
  availableForSale
  images(first: 20) {
    edges { node { url altText } }
  }
  variants(first: 100) {
    edges {
      node {
        id
        sku
        title
        barcode
        price { amount }
        compareAtPrice { amount }
        quantityAvailable
        availableForSale
        requiresShipping
        weight
        weightUnit
        selectedOptions { name value }
      }
    }
  }`

// productsQuery is the paginated list query; metafields arrive as a flat array
var productsQuery = fmt.Sprintf(`query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      cursor
      node {%s
        metafields(identifiers: [%s]) { namespace key value }
      }
    }
  }
}`, productFields, metafieldIdentifiers())

// productQuery is the single-product query; metafields may arrive edge-wrapped
// and option names come from the product-level options
const productQuery = `query Product($handle: String!) {
  product(handle: $handle) {` + productFields + `
    options { name values }
    metafields(first: 50) {
      edges { node { namespace key value } }
    }
  }
}`

func metafieldIdentifiers() string {
	ids := make([]string, 0, len(specMetafields))
	for _, mf := range specMetafields {
		ids = append(ids, fmt.Sprintf(`{namespace: %q, key: %q}`, mf[0], mf[1]))
	}
	return strings.Join(ids, ", ")
}
