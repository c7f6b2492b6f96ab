package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/outboardpro/catalog/internal/domain"
)

// Catalog is the on-disk shape of a generated catalog
type Catalog struct {
	Products []domain.Product `json:"products"`
}

// Encode renders products as indented JSON. Map keys are emitted in sorted
// order, so equal catalogs encode to identical bytes.
func Encode(products []domain.Product) ([]byte, error) {
	if products == nil {
		products = []domain.Product{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Catalog{Products: products}); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores the catalog at path, replacing any previous file atomically
func Write(path string, products []domain.Product) error {
	data, err := Encode(products)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod catalog: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// Read loads a catalog written by Write
func Read(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: catalog %s: %v", domain.ErrUpstreamShape, path, err)
	}
	if catalog.Products == nil {
		catalog.Products = []domain.Product{}
	}
	return catalog.Products, nil
}
