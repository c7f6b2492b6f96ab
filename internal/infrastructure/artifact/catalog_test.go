package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID:            "yamaha-f150",
			Handle:        "yamaha-f150",
			Title:         "Yamaha F150",
			Brand:         "Yamaha",
			Category:      domain.Category,
			PowerCategory: domain.PowerHighPerformance,
			Horsepower:    150,
			Tags:          []string{"four-stroke"},
			Variants:      []domain.Variant{{SKU: "SKU1", Price: 12000, CompareAtPrice: 12000, Inventory: 3, Available: true}},
			PriceRange:    domain.PriceRange{Min: 12000, Max: 12000},
			InStock:       true,
			Status:        domain.DefaultStatus,
			Images:        []domain.Image{{Src: "http://x/img.jpg", Position: 1}},
			Specs: map[string]string{
				"Stroke Type":        "4-Stroke",
				"Horsepower":         "150 HP",
				"engine.stroke_type": "4-Stroke",
				"Cylinders":          "4",
			},
		},
		{
			ID:            "tohatsu-mfs6",
			Handle:        "tohatsu-mfs6",
			Title:         "Tohatsu MFS6 <Sail Pro>",
			Brand:         "Tohatsu",
			Category:      domain.Category,
			PowerCategory: domain.PowerPortable,
			Horsepower:    6,
			Tags:          []string{},
			Variants:      []domain.Variant{},
			Images:        []domain.Image{},
			Specs:         map[string]string{},
			Status:        domain.DefaultStatus,
		},
	}
}

func TestEncode_Deterministic(t *testing.T) {
	first, err := Encode(sampleProducts())
	require.NoError(t, err)
	second, err := Encode(sampleProducts())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "<Sail Pro>")
}

func TestEncode_NilProducts(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[]}`, string(data))
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated", "catalog.json")

	require.NoError(t, Write(path, sampleProducts()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// A second write of the same catalog leaves identical bytes
	require.NoError(t, Write(path, sampleProducts()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	products, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), products)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRead_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"products": 7}`), 0o644))

		_, err := Read(path)
		assert.ErrorIs(t, err, domain.ErrUpstreamShape)
	})
}

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, Write(path, sampleProducts()))

	src := NewStaticSource(path)

	t.Run("product by handle", func(t *testing.T) {
		p, err := src.Product(ctx, "tohatsu-mfs6")
		require.NoError(t, err)
		assert.Equal(t, "Tohatsu", p.Brand)
	})

	t.Run("unknown handle", func(t *testing.T) {
		_, err := src.Product(ctx, "evinrude-e-tec")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("all products keep file order", func(t *testing.T) {
		products, err := src.Products(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "yamaha-f150", products[0].Handle)
		assert.Equal(t, "tohatsu-mfs6", products[1].Handle)
	})

	t.Run("callers cannot change the loaded catalog", func(t *testing.T) {
		p, err := src.Product(ctx, "yamaha-f150")
		require.NoError(t, err)
		p.Specs["Cylinders"] = "6"
		p.Variants[0].Price = 1
		p.Tags[0] = "two-stroke"
		p.Images[0].Src = "http://x/other.jpg"

		products, err := src.Products(ctx)
		require.NoError(t, err)
		products[0].Specs["Horsepower"] = "999 HP"
		products[0].Variants[0].Inventory = 0

		again, err := src.Product(ctx, "yamaha-f150")
		require.NoError(t, err)
		assert.Equal(t, "4", again.Specs["Cylinders"])
		assert.Equal(t, "150 HP", again.Specs["Horsepower"])
		assert.Equal(t, 12000.0, again.Variants[0].Price)
		assert.Equal(t, 3, again.Variants[0].Inventory)
		assert.Equal(t, "four-stroke", again.Tags[0])
		assert.Equal(t, "http://x/img.jpg", again.Images[0].Src)
	})

	t.Run("missing catalog", func(t *testing.T) {
		_, err := NewStaticSource(filepath.Join(t.TempDir(), "none.json")).Products(ctx)
		assert.Error(t, err)
	})
}
