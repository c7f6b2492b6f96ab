package shopify

import (
	"encoding/json"
	"testing"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKeys  []string
		wantShape bool
	}{
		{"edges", `{"edges":[{"node":{"key":"a"}},{"node":null},{"node":{"key":"b"}}]}`, []string{"a", "b"}, false},
		{"nodes", `{"nodes":[{"key":"a"},null]}`, []string{"a"}, false},
		{"flat array", `[{"key":"a"},{"key":"b"}]`, []string{"a", "b"}, false},
		{"null", `null`, nil, false},
		{"object without list", `{"foo":1}`, nil, true},
		{"string", `"metafields"`, nil, true},
		{"array of strings", `["a","b"]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Connection[MetafieldNode]
			require.NoError(t, json.Unmarshal([]byte(tt.input), &c))

			var keys []string
			for _, item := range c.Items {
				keys = append(keys, item.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
			if tt.wantShape {
				assert.ErrorIs(t, c.ShapeErr, domain.ErrUpstreamShape)
			} else {
				assert.NoError(t, c.ShapeErr)
			}
		})
	}
}

func TestMoney_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"amount":"12000.0","currencyCode":"USD"}`, "12000.0"},
		{`{"amount":9.5}`, "9.5"},
		{`"450.00"`, "450.00"},
		{`300`, "300"},
		{`null`, ""},
		{`{"amount":null}`, ""},
		{`true`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.want, m.Amount)
		})
	}
}

func TestStringList_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  StringList
	}{
		{`["a","b"]`, StringList{"a", "b"}},
		{`"four-stroke, efi ,"`, StringList{"four-stroke", "efi"}},
		{`null`, nil},
		{`42`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var l StringList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &l))
			assert.Equal(t, tt.want, l)
		})
	}
}

func TestImageNode_Location(t *testing.T) {
	assert.Equal(t, "https://a", ImageNode{URL: "https://a", Src: "https://b"}.Location())
	assert.Equal(t, "https://b", ImageNode{Src: " https://b "}.Location())
	assert.Equal(t, "https://c", ImageNode{OriginalSrc: "https://c"}.Location())
	assert.Equal(t, "", ImageNode{}.Location())
}

const listNodeJSON = `{
  "id": "gid://shopify/Product/1",
  "handle": "yamaha-f150",
  "title": "Yamaha F150",
  "description": "Reliable power.",
  "descriptionHtml": "<p>Reliable power.</p>",
  "vendor": "Yamaha",
  "productType": "Outboard Motor",
  "tags": ["four-stroke"],
  "images": {"edges": [
    {"node": {"url": "https://cdn.example.com/f150.jpg", "altText": "Front"}},
    {"node": {"altText": "missing url"}}
  ]},
  "metafields": [null, {"namespace": "engine", "key": "cylinders", "value": "4"}],
  "variants": {"edges": [
    {"node": {
      "id": "gid://shopify/ProductVariant/42",
      "sku": "",
      "title": "20\" / Silver",
      "price": {"amount": "12000.0"},
      "compareAtPrice": null,
      "quantityAvailable": 3,
      "availableForSale": true,
      "weight": 476.2,
      "weightUnit": "POUNDS",
      "selectedOptions": []
    }},
    {"node": {
      "id": "gid://shopify/ProductVariant/43",
      "sku": "F150XB",
      "title": "25\"",
      "price": "12500.00",
      "compareAtPrice": {"amount": "13000.00"},
      "availableForSale": false,
      "selectedOptions": [{"name": "Shaft", "value": "25\""}]
    }}
  ]}
}`

func TestDecodeProductNode(t *testing.T) {
	var node ProductNode
	require.NoError(t, json.Unmarshal([]byte(listNodeJSON), &node))
	node.Options = []ProductOption{{Name: "Shaft"}, {Name: "Color"}}

	raw, skipped := DecodeProductNode(&node)

	assert.Equal(t, domain.SourceGraphQL, raw.Source)
	assert.Equal(t, "yamaha-f150", raw.Handle)
	assert.Equal(t, "Reliable power.", raw.Description)
	assert.Equal(t, "<p>Reliable power.</p>", raw.BodyHTML)
	assert.Equal(t, "Outboard Motor", raw.Type)
	assert.Equal(t, []string{"four-stroke"}, raw.Tags)
	assert.True(t, raw.Published)

	require.Len(t, raw.Images, 1)
	assert.Equal(t, domain.RawImage{Src: "https://cdn.example.com/f150.jpg", Position: 1, Alt: "Front"}, raw.Images[0])
	require.Len(t, skipped, 1)
	assert.Equal(t, "image without url", skipped[0].Reason)

	assert.Equal(t, []domain.RawMetafield{{Namespace: "engine", Key: "cylinders", Value: "4"}}, raw.Metafields)

	require.Len(t, raw.Variants, 2)
	v := raw.Variants[0]
	assert.Equal(t, "42", v.SKU, "SKU falls back to the variant id")
	assert.Equal(t, "12000.0", v.PriceText)
	assert.Equal(t, "", v.CompareAtPriceText)
	assert.Equal(t, 3, v.InventoryQty)
	assert.Equal(t, "lb", v.WeightUnit)
	assert.Equal(t, "Shaft", v.Option1Name)
	assert.Equal(t, `20"`, v.Option1Value)
	assert.Equal(t, "Color", v.Option2Name)
	assert.Equal(t, "Silver", v.Option2Value)

	v = raw.Variants[1]
	assert.Equal(t, "F150XB", v.SKU)
	assert.Equal(t, "12500.00", v.PriceText)
	assert.Equal(t, "13000.00", v.CompareAtPriceText)
	assert.Equal(t, 0, v.InventoryQty)
	assert.Equal(t, `25"`, v.Option1Value)
	assert.Equal(t, "", v.Option2Name)
}

func TestDecodeProductNode_BadMetafieldShape(t *testing.T) {
	var node ProductNode
	require.NoError(t, json.Unmarshal([]byte(`{"handle":"h","title":"T","metafields":"oops"}`), &node))

	raw, _ := DecodeProductNode(&node)
	assert.Equal(t, "h", raw.Handle)
	assert.Empty(t, raw.Metafields)
}

func TestDecodeProductNode_Nil(t *testing.T) {
	raw, skipped := DecodeProductNode(nil)
	assert.Equal(t, domain.SourceGraphQL, raw.Source)
	assert.Empty(t, raw.Handle)
	assert.Empty(t, skipped)
}

func TestOptionPair(t *testing.T) {
	name, value := optionPair("Title", "Default Title")
	assert.Empty(t, name)
	assert.Empty(t, value)

	name, value = optionPair("Shaft", "")
	assert.Empty(t, name)
	assert.Empty(t, value)

	name, value = optionPair("Shaft", "20\"")
	assert.Equal(t, "Shaft", name)
	assert.Equal(t, "20\"", value)
}

func TestVariantIDFromGID(t *testing.T) {
	assert.Equal(t, "123", variantIDFromGID("gid://shopify/ProductVariant/123"))
	assert.Equal(t, "plain", variantIDFromGID(" plain "))
}
