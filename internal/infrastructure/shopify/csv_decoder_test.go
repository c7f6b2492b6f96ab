package shopify

import (
	"strings"
	"testing"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVDecoder_QuotedFields(t *testing.T) {
	input := "Handle,Title,Body (HTML),Variant SKU,Variant Price\n" +
		"yamaha-f150,\"Yamaha F150, 20\"\" shaft\",\"<p>Line one,\nline two</p>\",SKU1,12000\n"

	raws, skipped, err := NewCSVDecoder().Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, raws, 1)

	assert.Equal(t, `Yamaha F150, 20" shaft`, raws[0].Title)
	assert.Equal(t, "<p>Line one,\nline two</p>", raws[0].Description)
	assert.Equal(t, domain.SourceCSV, raws[0].Source)
}

func TestCSVDecoder_ByteOrderMark(t *testing.T) {
	input := "\xef\xbb\xbfHandle,Title\nhonda-bf20,Honda BF20\n"

	raws, _, err := NewCSVDecoder().Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "honda-bf20", raws[0].Handle)
}

func TestCSVDecoder_MissingHandleColumn(t *testing.T) {
	_, _, err := NewCSVDecoder().Decode(strings.NewReader("Title,Vendor\nX,Y\n"))
	assert.ErrorIs(t, err, domain.ErrUpstreamShape)
}

func TestCSVDecoder_EmptyInput(t *testing.T) {
	raws, skipped, err := NewCSVDecoder().Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, raws)
	assert.Empty(t, skipped)
}

func TestCSVDecoder_Grouping(t *testing.T) {
	input := "Handle,Title,Vendor,Tags,Published,Variant SKU,Variant Price,Variant Inventory Qty,Image Src,Image Position\n" +
		"mercury-60,Mercury 60 ELPT,Mercury Marine,\"four-stroke, efi\",true,M1,8200,2,,\n" +
		",,,,,,,,,\n" +
		"suzuki-df25,Suzuki DF25,,,,S1,3400,0,,\n" +
		"mercury-60,Ignored Title,Other,ignored,false,M2,8300,0,https://cdn.example.com/m60.jpg,1\n" +
		"mercury-60,,,,,,,,ftp://bad/img.jpg,2\n" +
		"mercury-60,,,,,,,,https://cdn.example.com/m60-side.jpg,\n"

	raws, skipped, err := NewCSVDecoder().Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raws, 2)

	m := raws[0]
	assert.Equal(t, "mercury-60", m.Handle)
	assert.Equal(t, "Mercury 60 ELPT", m.Title)
	assert.Equal(t, "Mercury Marine", m.Vendor)
	assert.Equal(t, []string{"four-stroke", "efi"}, m.Tags)
	assert.True(t, m.Published)
	require.Len(t, m.Variants, 2, "image-only rows add no variant")
	assert.Equal(t, "M2", m.Variants[1].SKU)
	assert.Equal(t, 2, m.Variants[0].InventoryQty)
	assert.True(t, m.Variants[0].Available)
	require.Len(t, m.Images, 2)
	assert.Equal(t, domain.RawImage{Src: "https://cdn.example.com/m60.jpg", Position: 1}, m.Images[0])
	assert.Equal(t, 0, m.Images[1].Position)

	assert.Equal(t, "suzuki-df25", raws[1].Handle)

	reasons := make([]string, 0, len(skipped))
	for _, s := range skipped {
		reasons = append(reasons, s.Reason)
	}
	assert.ElementsMatch(t, []string{"empty handle", "malformed image URL"}, reasons)
}

func TestCSVDecoder_VariantColumns(t *testing.T) {
	input := "Handle,Title,Variant SKU,Option1 Name,Option1 Value,Option2 Name,Option2 Value,Variant Price,Variant Compare At Price,Cost per item,Variant Grams,Variant Weight Unit,Variant Barcode,Variant Taxable,Variant Requires Shipping\n" +
		"tohatsu-mfs9-8,Tohatsu MFS9.8,T1,Shaft,15\",Start,Manual,2450.00,2600.00,1800,39000,kg,0123,true,TRUE\n" +
		"tohatsu-mfs9-8,,T2,Shaft,20\",,,2500,,,1000,pounds,,false,true\n"

	raws, _, err := NewCSVDecoder().Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	require.Len(t, raws[0].Variants, 2)

	v := raws[0].Variants[0]
	assert.Equal(t, "T1", v.SKU)
	assert.Equal(t, "Shaft", v.Option1Name)
	assert.Equal(t, `15"`, v.Option1Value)
	assert.Equal(t, "Manual", v.Option2Value)
	assert.Equal(t, "2450.00", v.PriceText)
	assert.Equal(t, "2600.00", v.CompareAtPriceText)
	assert.Equal(t, "1800", v.CostPerItemText)
	assert.Equal(t, 39.0, v.Weight)
	assert.Equal(t, "kg", v.WeightUnit)
	assert.Equal(t, "0123", v.Barcode)
	assert.True(t, v.Taxable)
	assert.False(t, v.RequiresShipping, "only the exact string true counts")

	v = raws[0].Variants[1]
	assert.Equal(t, "lb", v.WeightUnit)
	assert.Equal(t, 2.2, v.Weight)
	assert.False(t, v.Available)
}

func TestCSVDecoder_MetafieldColumns(t *testing.T) {
	input := "Handle,Title,Shaft Length (product.metafields.physical.shaft_length),Cylinders (product.metafields.engine.cylinders)\n" +
		"yamaha-f25,Yamaha F25,,2\n" +
		"yamaha-f25,,20\",3\n"

	raws, _, err := NewCSVDecoder().Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raws, 1)

	assert.Equal(t, []domain.RawMetafield{
		{Namespace: "engine", Key: "cylinders", Value: "2"},
		{Namespace: "physical", Key: "shaft_length", Value: `20"`},
	}, raws[0].Metafields)
}

func TestGramsTo(t *testing.T) {
	tests := []struct {
		grams float64
		unit  string
		want  float64
	}{
		{0, "lb", 0},
		{-10, "kg", 0},
		{1000, "kg", 1},
		{453.59237, "lb", 1},
		{100, "g", 100},
		{56.69904625, "oz", 2},
		{1000, "stone", 2.2},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			assert.Equal(t, tt.want, gramsTo(tt.grams, tt.unit))
		})
	}
}

func TestNormalizeWeightUnit(t *testing.T) {
	tests := map[string]string{
		"":          "lb",
		"LBS":       "lb",
		"kilograms": "kg",
		"g":         "g",
		"ounces":    "oz",
		"stone":     "lb",
	}
	for in, want := range tests {
		if got := normalizeWeightUnit(in); got != want {
			t.Errorf("normalizeWeightUnit(%q) = %q, want %q", in, got, want)
		}
	}
}
