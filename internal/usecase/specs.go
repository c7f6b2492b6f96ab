package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/outboardpro/catalog/internal/domain"
)

// Display labels with special resolution rules
const (
	LabelHorsepower = "Horsepower"
	LabelWeight     = "Weight"
	LabelCondition  = "Condition"
)

const defaultWeightUnit = "lb"

// specRule maps a display label to the upstream keys that may carry it
type specRule struct {
	Label string
	Keys  []string
}

// specTable is resolved in order. Each key is tried through the full
// fallback chain of lookupSpec, label first.
var specTable = []specRule{
	{Label: LabelHorsepower, Keys: []string{"engine.horsepower", "engine.hp", "hp"}},
	{Label: "Engine Type", Keys: []string{"engine.engine_type", "engine.type"}},
	{Label: "Stroke Type", Keys: []string{"engine.stroke_type", "engine.stroke", "stroke"}},
	{Label: "Cylinders", Keys: []string{"engine.cylinders", "engine.cylinder_count"}},
	{Label: "Displacement", Keys: []string{"engine.displacement", "engine.displacement_cc"}},
	{Label: "Cooling System", Keys: []string{"engine.cooling_system", "engine.cooling"}},
	{Label: "Full Throttle RPM", Keys: []string{"engine.rpm_range", "engine.full_throttle_rpm", "rpm_range"}},
	{Label: "Shaft Length", Keys: []string{"physical.shaft_length", "mechanical.shaft_length", "shaft"}},
	{Label: LabelWeight, Keys: []string{"physical.weight", "physical.dry_weight", "dry_weight"}},
	{Label: "Gear Ratio", Keys: []string{"mechanical.gear_ratio"}},
	{Label: "Alternator Output", Keys: []string{"mechanical.alternator_output", "mechanical.alternator", "alternator"}},
	{Label: "Propeller", Keys: []string{"mechanical.propeller", "mechanical.prop"}},
	{Label: "Fuel System", Keys: []string{"fuel.fuel_system", "fuel.induction", "fuel_induction"}},
	{Label: "Fuel Tank", Keys: []string{"fuel.tank_capacity", "fuel.tank", "tank_capacity"}},
	{Label: "Recommended Fuel", Keys: []string{"fuel.recommended_fuel", "fuel.octane", "fuel_type"}},
	{Label: "Starting System", Keys: []string{"controls.starting_system", "engine.starting_system", "start_type"}},
	{Label: "Steering", Keys: []string{"controls.steering", "controls.steering_type"}},
	{Label: "Trim & Tilt", Keys: []string{"controls.trim_tilt", "controls.trim_and_tilt", "trim_tilt"}},
	{Label: "Warranty", Keys: []string{"warranty.warranty", "warranty.duration", "warranty.length"}},
	{Label: LabelCondition, Keys: []string{"custom.condition", "product.condition"}},
}

// Metafield namespaces that never carry display specifications
var ignoredNamespaces = map[string]bool{
	"global":  true,
	"seo":     true,
	"reviews": true,
	"shopify": true,
}

var (
	unitPattern       = regexp.MustCompile(`[A-Za-z]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SpecInput carries everything the resolver reads
type SpecInput struct {
	Metafields      []domain.RawMetafield
	DescriptionHTML string
	Horsepower      float64
	Variants        []domain.Variant
}

// specEntry is one upstream key/value pair before labelling
type specEntry struct {
	Namespace string
	Key       string
	Value     string
}

func (e specEntry) composite() string {
	if e.Namespace == "" {
		return e.Key
	}
	return e.Namespace + "." + e.Key
}

// ResolveSpecs builds the display specification dictionary.
// Metafields are the structured source; without any, "<li>key: value</li>"
// items of the HTML body are used instead. Empty values are never emitted.
func ResolveSpecs(in SpecInput) map[string]string {
	entries := metafieldEntries(in.Metafields)
	if len(entries) == 0 && strings.TrimSpace(in.DescriptionHTML) != "" {
		entries = htmlEntries(in.DescriptionHTML)
	}

	raw := make(map[string]string, len(entries)*2)
	for _, e := range entries {
		if _, ok := raw[e.composite()]; !ok {
			raw[e.composite()] = e.Value
		}
		if _, ok := raw[e.Key]; !ok {
			raw[e.Key] = e.Value
		}
	}

	specs := make(map[string]string, len(specTable)+len(entries))
	claimed := make(map[string]bool)

	for _, rule := range specTable {
		var value string
		switch rule.Label {
		case LabelHorsepower:
			value = resolveHorsepower(raw, rule, in.Horsepower, claimed)
		case LabelWeight:
			value = resolveWeight(raw, rule, in.Variants, claimed)
		default:
			value = resolveRule(raw, rule, claimed)
		}
		if value != "" {
			specs[rule.Label] = value
		}
	}

	for _, e := range entries {
		// raw composite key kept for backward-compatible lookups
		if e.Namespace != "" {
			specs[e.composite()] = e.Value
		}
		if claimed[e.Key] || claimed[e.composite()] {
			continue
		}
		label := humanizeKey(e.Key)
		if label == "" {
			continue
		}
		if _, exists := specs[label]; !exists {
			specs[label] = e.Value
		}
	}

	return specs
}

// resolveRule walks the label and its synonyms through the fallback chain
func resolveRule(raw map[string]string, rule specRule, claimed map[string]bool) string {
	candidates := append([]string{rule.Label}, rule.Keys...)
	for _, key := range candidates {
		if value, hit, ok := lookupSpec(raw, key); ok {
			claimed[hit] = true
			return value
		}
	}
	return ""
}

// lookupSpec resolves one key through the fallback chain:
// literal, lower-cased, spaces-to-underscores, lower-cased+underscored,
// custom.<lower>, custom.<lower_underscored>. It returns the value and the
// raw key that matched.
func lookupSpec(raw map[string]string, key string) (string, string, bool) {
	lower := strings.ToLower(key)
	underscored := strings.ReplaceAll(key, " ", "_")
	lowerUnderscored := strings.ReplaceAll(lower, " ", "_")

	candidates := []string{
		key,
		lower,
		underscored,
		lowerUnderscored,
		"custom." + lower,
		"custom." + lowerUnderscored,
	}
	for _, candidate := range candidates {
		if value := strings.TrimSpace(raw[candidate]); value != "" {
			return value, candidate, true
		}
	}
	return "", "", false
}

// resolveHorsepower prefers the derived numeric attribute over metafields
func resolveHorsepower(raw map[string]string, rule specRule, hp float64, claimed map[string]bool) string {
	value := resolveRule(raw, rule, claimed)
	if hp > 0 {
		return domain.FormatNumber(hp) + " HP"
	}
	return value
}

// resolveWeight prefers the selected (first) variant's weight, then any other
// variant weight as the product-level weight, then the metafield value.
func resolveWeight(raw map[string]string, rule specRule, variants []domain.Variant, claimed map[string]bool) string {
	value := resolveRule(raw, rule, claimed)

	for _, v := range variants {
		if v.Weight > 0 {
			return withUnit(domain.FormatNumber(v.Weight), v.WeightUnit)
		}
	}
	if value == "" {
		return ""
	}
	return withUnit(value, defaultWeightUnit)
}

// withUnit appends a unit suffix unless the value already names one
func withUnit(value, unit string) string {
	if unitPattern.MatchString(value) {
		return value
	}
	if unit == "" {
		unit = defaultWeightUnit
	}
	return value + " " + unit
}

// metafieldEntries keeps metafields whose trimmed value is non-empty
func metafieldEntries(metafields []domain.RawMetafield) []specEntry {
	entries := make([]specEntry, 0, len(metafields))
	for _, mf := range metafields {
		key := strings.TrimSpace(mf.Key)
		value := strings.TrimSpace(mf.Value)
		ns := strings.TrimSpace(mf.Namespace)
		if key == "" || value == "" || ignoredNamespaces[ns] {
			continue
		}
		entries = append(entries, specEntry{Namespace: ns, Key: key, Value: value})
	}
	return entries
}

// htmlEntries scans "<li>key: value</li>" items of an HTML body
func htmlEntries(body string) []specEntry {
	var entries []specEntry
	for _, item := range ScanSpecList(body) {
		entries = append(entries, specEntry{Key: item[0], Value: item[1]})
	}
	return entries
}

// ScanSpecList returns the key/value pairs of every "<li>key: value</li>"
// in the body, in document order. Items without a colon are ignored.
func ScanSpecList(body string) [][2]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var items [][2]string
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		idx := strings.Index(text, ":")
		if idx <= 0 {
			return
		}
		key := strings.TrimSpace(text[:idx])
		value := strings.TrimSpace(text[idx+1:])
		if key == "" || value == "" {
			return
		}
		items = append(items, [2]string{key, value})
	})
	return items
}

// ExtractDescription returns the text of the first <p> block. Bodies without
// a paragraph fall back to all of their text; plain text is returned as is.
func ExtractDescription(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return collapseWhitespace(body)
	}

	if p := doc.Find("p").First(); p.Length() > 0 {
		return collapseWhitespace(p.Text())
	}
	return collapseWhitespace(doc.Text())
}

// humanizeKey turns "propeller_pitch" into "Propeller Pitch"
func humanizeKey(key string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
