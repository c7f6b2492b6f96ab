package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/outboardpro/catalog/internal/domain"
)

// bodyPolicy sanitizes the upstream HTML body kept for the presentation layer
var bodyPolicy = bluemonday.UGCPolicy()

// AssembleResult is a built product plus the rows skipped while building it
type AssembleResult struct {
	Product domain.Product
	Skipped []domain.RowError
}

// BuildProduct runs the full pipeline for one decoded record:
// attribute extraction, variant aggregation, spec resolution, assembly.
func BuildProduct(raw *domain.RawProduct) (AssembleResult, error) {
	if err := validateRaw(raw); err != nil {
		return AssembleResult{}, err
	}

	attrs := ExtractAttributes(raw.Title, raw.Vendor)
	agg := AggregateVariants(raw.Handle, raw.Variants)
	specs := ResolveSpecs(SpecInput{
		Metafields:      raw.Metafields,
		DescriptionHTML: specBody(raw),
		Horsepower:      attrs.Horsepower,
		Variants:        agg.Variants,
	})

	product, err := Assemble(raw, attrs, agg, specs)
	if err != nil {
		return AssembleResult{}, err
	}
	return AssembleResult{Product: product, Skipped: agg.Skipped}, nil
}

// Assemble composes the canonical product and enforces its invariants:
// images unique by src, horsepower >= 0, status and type defaults.
func Assemble(raw *domain.RawProduct, attrs Attributes, agg VariantAggregate, specs map[string]string) (domain.Product, error) {
	if err := validateRaw(raw); err != nil {
		return domain.Product{}, err
	}

	hp := attrs.Horsepower
	if hp < 0 || math.IsNaN(hp) || math.IsInf(hp, 0) {
		hp = 0
	}

	brand := attrs.Brand
	if brand == "" {
		brand = domain.UnknownBrand
	}

	status := strings.ToLower(strings.TrimSpace(raw.Status))
	if status == "" {
		status = domain.DefaultStatus
	}

	productType := strings.TrimSpace(raw.Type)
	if productType == "" {
		productType = domain.DefaultProductType
	}

	variants := agg.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}
	if specs == nil {
		specs = map[string]string{}
	}

	handle := strings.TrimSpace(raw.Handle)
	return domain.Product{
		ID:            handle,
		Handle:        handle,
		Title:         strings.TrimSpace(raw.Title),
		Description:   describe(raw),
		BodyHTML:      sanitizeBody(raw),
		Vendor:        strings.TrimSpace(raw.Vendor),
		Brand:         brand,
		Type:          productType,
		Tags:          normalizeTags(raw.Tags),
		Category:      domain.Category,
		PowerCategory: ClassifyPower(hp),
		Horsepower:    hp,
		Variants:      variants,
		PriceRange:    ComputePriceRange(variants),
		InStock:       AnyInStock(variants),
		Status:        status,
		Condition:     specs[LabelCondition],
		Images:        dedupImages(raw.Images),
		Specs:         specs,
	}, nil
}

// validateRaw checks the only two required upstream fields
func validateRaw(raw *domain.RawProduct) error {
	if raw == nil {
		return fmt.Errorf("%w: nil record", domain.ErrValidation)
	}
	if strings.TrimSpace(raw.Handle) == "" {
		return fmt.Errorf("%w: missing handle", domain.ErrValidation)
	}
	if strings.TrimSpace(raw.Title) == "" {
		return fmt.Errorf("%w: handle %q: missing title", domain.ErrValidation, raw.Handle)
	}
	return nil
}

// specBody picks the HTML body used for legacy "<li>" spec extraction
func specBody(raw *domain.RawProduct) string {
	if raw.Source == domain.SourceCSV {
		return raw.Description
	}
	return raw.BodyHTML
}

// describe returns the plain-text description for either input path
func describe(raw *domain.RawProduct) string {
	if raw.Source == domain.SourceCSV {
		return ExtractDescription(raw.Description)
	}
	if text := collapseWhitespace(raw.Description); text != "" {
		return text
	}
	return ExtractDescription(raw.BodyHTML)
}

func sanitizeBody(raw *domain.RawProduct) string {
	body := raw.BodyHTML
	if body == "" && raw.Source == domain.SourceCSV {
		body = raw.Description
	}
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return strings.TrimSpace(bodyPolicy.Sanitize(body))
}

// normalizeTags trims, drops empties and de-duplicates, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// dedupImages keeps the first image per src. Missing positions are filled
// from first-seen order, then images are ordered by position.
func dedupImages(raws []domain.RawImage) []domain.Image {
	images := make([]domain.Image, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, img := range raws {
		src := strings.TrimSpace(img.Src)
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true

		position := img.Position
		if position <= 0 {
			position = len(images) + 1
		}
		images = append(images, domain.Image{Src: src, Position: position, Alt: strings.TrimSpace(img.Alt)})
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Position < images[j].Position
	})
	return images
}
