package shopify

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

// Column names of the product CSV export
const (
	ColHandle           = "Handle"
	ColTitle            = "Title"
	ColBody             = "Body (HTML)"
	ColVendor           = "Vendor"
	ColType             = "Type"
	ColTags             = "Tags"
	ColPublished        = "Published"
	ColStatus           = "Status"
	ColSKU              = "Variant SKU"
	ColOption1Name      = "Option1 Name"
	ColOption1Value     = "Option1 Value"
	ColOption2Name      = "Option2 Name"
	ColOption2Value     = "Option2 Value"
	ColPrice            = "Variant Price"
	ColCompareAtPrice   = "Variant Compare At Price"
	ColGrams            = "Variant Grams"
	ColWeightUnit       = "Variant Weight Unit"
	ColInventoryQty     = "Variant Inventory Qty"
	ColBarcode          = "Variant Barcode"
	ColTaxable          = "Variant Taxable"
	ColRequiresShipping = "Variant Requires Shipping"
	ColCostPerItem      = "Cost per item"
	ColImageSrc         = "Image Src"
	ColImagePosition    = "Image Position"
	ColImageAlt         = "Image Alt Text"
)

// Columns such as "Shaft Length (product.metafields.physical.shaft_length)"
var metafieldColumnPattern = regexp.MustCompile(`\(product\.metafields\.([A-Za-z0-9_-]+)\.([A-Za-z0-9_-]+)\)\s*$`)

// Grams per display unit
var gramsPerUnit = map[string]float64{
	"g":  1,
	"kg": 1000,
	"lb": 453.59237,
	"oz": 28.349523125,
}

const defaultWeightUnit = "lb"

// CSVRow is one data row of the export, addressed by column name
type CSVRow struct {
	Line   int
	header map[string]int
	record []string
}

// Get returns the trimmed cell for a column, or "" when the column is absent
func (r CSVRow) Get(column string) string {
	idx, ok := r.header[column]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// RowGroup is every row sharing one handle, in file order
type RowGroup struct {
	Handle string
	Rows   []CSVRow
}

// metafieldColumn is a header cell that carries a product metafield
type metafieldColumn struct {
	Namespace string
	Key       string
	Column    string
}

// CSVDecoder decodes a product CSV export into raw products
type CSVDecoder struct{}

// NewCSVDecoder creates a CSV decoder
func NewCSVDecoder() *CSVDecoder { return &CSVDecoder{} }

// Decode reads the whole export, groups rows by handle (first-seen order)
// and decodes each group. Unreadable rows and rows without a handle are
// reported as skipped; only reader I/O failures and a missing Handle
// column are returned as errors.
func (d *CSVDecoder) Decode(r io.Reader) ([]domain.RawProduct, []domain.RowError, error) {
	rows, skipped, err := ReadRows(r)
	if err != nil {
		return nil, skipped, err
	}

	groups, groupSkipped := GroupRows(rows)
	skipped = append(skipped, groupSkipped...)

	products := make([]domain.RawProduct, 0, len(groups))
	for _, g := range groups {
		raw, rowErrs := DecodeGroup(g)
		skipped = append(skipped, rowErrs...)
		products = append(products, raw)
	}
	return products, skipped, nil
}

// ReadRows parses the CSV (quote-aware, embedded commas and newlines) and
// returns its data rows keyed by the header row.
func ReadRows(r io.Reader) ([]CSVRow, []domain.RowError, error) {
	br := bufio.NewReader(r)
	// Spreadsheet exports often start with a UTF-8 BOM
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRecord, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(headerRecord))
	for i, name := range headerRecord {
		name = strings.TrimSpace(name)
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}
	if _, ok := header[ColHandle]; !ok {
		return nil, nil, fmt.Errorf("%w: missing %q column", domain.ErrUpstreamShape, ColHandle)
	}

	var rows []CSVRow
	var skipped []domain.RowError
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped = append(skipped, domain.RowError{Row: parseErr.StartLine, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, skipped, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, CSVRow{Line: line, header: header, record: record})
	}
	return rows, skipped, nil
}

// GroupRows folds rows into handle groups in first-seen order.
// Rows with an empty handle are skipped.
func GroupRows(rows []CSVRow) ([]RowGroup, []domain.RowError) {
	index := make(map[string]int)
	var groups []RowGroup
	var skipped []domain.RowError

	for _, row := range rows {
		handle := row.Get(ColHandle)
		if handle == "" {
			skipped = append(skipped, domain.RowError{Row: row.Line, Reason: "empty handle"})
			continue
		}
		i, ok := index[handle]
		if !ok {
			i = len(groups)
			index[handle] = i
			groups = append(groups, RowGroup{Handle: handle})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups, skipped
}

// DecodeGroup converts one handle group into a RawProduct. The first
// non-empty value of a product-level column wins; every row contributes
// variants, images and metafields.
func DecodeGroup(g RowGroup) (domain.RawProduct, []domain.RowError) {
	raw := domain.RawProduct{Source: domain.SourceCSV, Handle: g.Handle}
	var skipped []domain.RowError
	publishedSet := false
	seenMetafield := make(map[string]bool)

	var mcs []metafieldColumn
	if len(g.Rows) > 0 {
		mcs = metafieldColumns(g.Rows[0].header)
	}

	for _, row := range g.Rows {
		firstNonEmpty(&raw.Title, row.Get(ColTitle))
		firstNonEmpty(&raw.Description, row.Get(ColBody))
		firstNonEmpty(&raw.Vendor, row.Get(ColVendor))
		firstNonEmpty(&raw.Type, row.Get(ColType))
		firstNonEmpty(&raw.Status, row.Get(ColStatus))

		if raw.Tags == nil {
			if tags := row.Get(ColTags); tags != "" {
				raw.Tags = splitTags(tags)
			}
		}
		if !publishedSet {
			if published := row.Get(ColPublished); published != "" {
				raw.Published = published == "true"
				publishedSet = true
			}
		}

		if hasVariantData(row) {
			raw.Variants = append(raw.Variants, decodeVariant(row))
		}

		if src := row.Get(ColImageSrc); src != "" {
			if !strings.HasPrefix(src, "http") {
				skipped = append(skipped, domain.RowError{Handle: g.Handle, Row: row.Line, Reason: "malformed image URL"})
				log.Debug().Str("handle", g.Handle).Int("line", row.Line).Str("src", src).Msg("skipping image")
			} else {
				raw.Images = append(raw.Images, domain.RawImage{
					Src:      src,
					Position: domain.ParseQuantity(row.Get(ColImagePosition)),
					Alt:      row.Get(ColImageAlt),
				})
			}
		}

		for _, mc := range mcs {
			id := mc.Namespace + "." + mc.Key
			value := row.Get(mc.Column)
			if value == "" || seenMetafield[id] {
				continue
			}
			seenMetafield[id] = true
			raw.Metafields = append(raw.Metafields, domain.RawMetafield{Namespace: mc.Namespace, Key: mc.Key, Value: value})
		}
	}

	return raw, skipped
}

// decodeVariant reads the variant columns of one row. Booleans are true only
// for the exact string "true".
func decodeVariant(row CSVRow) domain.RawVariant {
	unit := normalizeWeightUnit(row.Get(ColWeightUnit))
	inventory := domain.ParseQuantity(row.Get(ColInventoryQty))

	return domain.RawVariant{
		SKU:                row.Get(ColSKU),
		Option1Name:        row.Get(ColOption1Name),
		Option1Value:       row.Get(ColOption1Value),
		Option2Name:        row.Get(ColOption2Name),
		Option2Value:       row.Get(ColOption2Value),
		PriceText:          row.Get(ColPrice),
		CompareAtPriceText: row.Get(ColCompareAtPrice),
		CostPerItemText:    row.Get(ColCostPerItem),
		InventoryQty:       inventory,
		Weight:             gramsTo(domain.ParseAmount(row.Get(ColGrams)), unit),
		WeightUnit:         unit,
		Barcode:            row.Get(ColBarcode),
		Taxable:            row.Get(ColTaxable) == "true",
		RequiresShipping:   row.Get(ColRequiresShipping) == "true",
		Available:          inventory > 0,
	}
}

// hasVariantData reports whether a row carries anything besides images
func hasVariantData(row CSVRow) bool {
	for _, col := range []string{ColSKU, ColPrice, ColOption1Value, ColInventoryQty} {
		if row.Get(col) != "" {
			return true
		}
	}
	return false
}

// metafieldColumns lists header cells that map to product metafields,
// ordered by column position
func metafieldColumns(header map[string]int) []metafieldColumn {
	var cols []metafieldColumn
	for name := range header {
		if m := metafieldColumnPattern.FindStringSubmatch(name); m != nil {
			cols = append(cols, metafieldColumn{Namespace: m[1], Key: m[2], Column: name})
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		return header[cols[i].Column] < header[cols[j].Column]
	})
	return cols
}

func normalizeWeightUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "lbs", "pound", "pounds":
		return "lb"
	case "kgs", "kilogram", "kilograms":
		return "kg"
	case "gram", "grams":
		return "g"
	case "ounce", "ounces":
		return "oz"
	}
	if _, ok := gramsPerUnit[unit]; ok {
		return unit
	}
	return defaultWeightUnit
}

// gramsTo converts grams to the display unit, rounded to 2 decimals
func gramsTo(grams float64, unit string) float64 {
	if grams <= 0 {
		return 0
	}
	factor, ok := gramsPerUnit[unit]
	if !ok {
		factor = gramsPerUnit[defaultWeightUnit]
	}
	return math.Round(grams/factor*100) / 100
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func firstNonEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}
