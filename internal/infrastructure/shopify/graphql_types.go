package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/outboardpro/catalog/internal/domain"
)

// GraphQLResponse is the standard GraphQL envelope
type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError is one entry of the "errors" array
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// PageInfo drives cursor pagination of the product list query
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ProductsQueryData is the "data" payload of the product list query
type ProductsQueryData struct {
	Products struct {
		Edges []struct {
			Cursor string      `json:"cursor"`
			Node   ProductNode `json:"node"`
		} `json:"edges"`
		PageInfo PageInfo `json:"pageInfo"`
	} `json:"products"`
}

// ProductQueryData is the "data" payload of the single-product query
type ProductQueryData struct {
	Product *ProductNode `json:"product"`
}

// ProductNode is one product as returned by either query
type ProductNode struct {
	ID               string                    `json:"id"`
	Handle           string                    `json:"handle"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description"`
	DescriptionHTML  string                    `json:"descriptionHtml"`
	Vendor           string                    `json:"vendor"`
	ProductType      string                    `json:"productType"`
	Tags             StringList                `json:"tags"`
	AvailableForSale bool                      `json:"availableForSale"`
	Options          []ProductOption           `json:"options"`
	Images           Connection[ImageNode]     `json:"images"`
	Metafields       Connection[MetafieldNode] `json:"metafields"`
	Variants         Connection[VariantNode]   `json:"variants"`
}

// ProductOption is a product-level option (single-product query)
type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ImageNode is a product image. Older API versions used src/originalSrc.
type ImageNode struct {
	URL         string `json:"url"`
	Src         string `json:"src"`
	OriginalSrc string `json:"originalSrc"`
	AltText     string `json:"altText"`
}

// Location returns the first populated image URL field
func (n ImageNode) Location() string {
	for _, s := range []string{n.URL, n.Src, n.OriginalSrc} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// MetafieldNode is a namespaced key/value attribute
type MetafieldNode struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// SelectedOption is a variant's option name/value pair (list query)
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantNode is one purchasable variant
type VariantNode struct {
	ID                string           `json:"id"`
	SKU               string           `json:"sku"`
	Title             string           `json:"title"`
	Barcode           string           `json:"barcode"`
	Price             Money            `json:"price"`
	CompareAtPrice    Money            `json:"compareAtPrice"`
	QuantityAvailable *int             `json:"quantityAvailable"`
	AvailableForSale  bool             `json:"availableForSale"`
	RequiresShipping  bool             `json:"requiresShipping"`
	Taxable           bool             `json:"taxable"`
	Weight            float64          `json:"weight"`
	WeightUnit        string           `json:"weightUnit"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
}

// Connection accepts the shapes the upstream API has returned for a list:
// {"edges":[{"node":...}]}, {"nodes":[...]} or a flat array. Null entries
// are dropped. Any other shape leaves the list empty and records ShapeErr
// instead of failing the whole response.
type Connection[T any] struct {
	Items    []T
	ShapeErr error
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Connection[T]) UnmarshalJSON(data []byte) error {
	c.Items, c.ShapeErr = nil, nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '[':
		var items []*T
		if err := json.Unmarshal(data, &items); err != nil {
			c.ShapeErr = fmt.Errorf("%w: %v", domain.ErrUpstreamShape, err)
			return nil
		}
		c.Items = compact(items)
	case '{':
		var wrapper struct {
			Edges *[]struct {
				Node *T `json:"node"`
			} `json:"edges"`
			Nodes *[]*T `json:"nodes"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			c.ShapeErr = fmt.Errorf("%w: %v", domain.ErrUpstreamShape, err)
			return nil
		}
		switch {
		case wrapper.Edges != nil:
			items := make([]*T, 0, len(*wrapper.Edges))
			for _, e := range *wrapper.Edges {
				items = append(items, e.Node)
			}
			c.Items = compact(items)
		case wrapper.Nodes != nil:
			c.Items = compact(*wrapper.Nodes)
		default:
			c.ShapeErr = fmt.Errorf("%w: object without edges or nodes", domain.ErrUpstreamShape)
		}
	default:
		c.ShapeErr = fmt.Errorf("%w: unexpected JSON %q", domain.ErrUpstreamShape, truncate(string(data), 32))
	}
	return nil
}

// MarshalJSON writes the flat array form
func (c Connection[T]) MarshalJSON() ([]byte, error) {
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

func compact[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// Money accepts {"amount":"1.00"}, {"amount":1.0}, "1.00" or 1.0
type Money struct {
	Amount string
}

// UnmarshalJSON implements json.Unmarshaler. Unreadable values become "".
func (m *Money) UnmarshalJSON(data []byte) error {
	m.Amount = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Amount json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		data = bytes.TrimSpace(obj.Amount)
	}
	m.Amount = scalarText(data)
	return nil
}

// StringList accepts a JSON string array or a comma-separated string
type StringList []string

// UnmarshalJSON implements json.Unmarshaler. Unreadable values become empty.
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*l = splitTags(joined)
	}
	return nil
}

// scalarText renders a JSON string or number as text
func scalarText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ""
	}
	return n.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
