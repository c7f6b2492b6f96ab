package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/outboardpro/catalog/internal/domain"
)

// Package-level compiled regex patterns for horsepower extraction
var (
	// "150 HP", "9.9HP", "2.5 hp"
	horsepowerPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*hp\b`)

	// Model codes such as "F150", "VF250", "F150XCA", "BF20DK2SHSU". Suffix
	// letters may follow the number. A decimal part is captured separately so
	// that "BF2.3" and "MFS9.8B" can be rejected instead of read as 2 or 9.
	modelCodePattern = regexp.MustCompile(`\b[A-Za-z]+(\d+)(\.\d+)?`)
)

// Model-code numbers are only trusted strictly inside this range
const (
	modelCodeMinHP = 1
	modelCodeMaxHP = 500
)

// knownBrands is the brand allow-list, tested in order against the vendor
var knownBrands = []string{"Yamaha", "Mercury", "Honda", "Suzuki", "Tohatsu"}

// Attributes holds the values derived from free-text title and vendor
type Attributes struct {
	Horsepower    float64
	PowerCategory domain.PowerCategory
	Brand         string
}

// ExtractAttributes derives horsepower, power category and brand from a title
// and a vendor/brand hint. It is pure and never fails: unknown horsepower is 0.
func ExtractAttributes(title, vendor string) Attributes {
	hp := ExtractHorsepower(title)
	return Attributes{
		Horsepower:    hp,
		PowerCategory: ClassifyPower(hp),
		Brand:         NormalizeBrand(vendor, title),
	}
}

// ExtractHorsepower reads horsepower from a product title.
// Order: explicit "<n> HP" token, then the first model code. A model code
// counts only when its number is an integer with 1 < n < 500.
func ExtractHorsepower(title string) float64 {
	if m := horsepowerPattern.FindStringSubmatch(title); m != nil {
		if hp, err := strconv.ParseFloat(m[1], 64); err == nil && hp > 0 {
			return hp
		}
	}

	m := modelCodePattern.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	// Decimal model codes are not integer horsepower codes
	if m[2] != "" {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if n <= modelCodeMinHP || n >= modelCodeMaxHP {
		return 0
	}
	return float64(n)
}

// ClassifyPower maps horsepower to a power category:
// hp <= 30 portable, (30,100] mid-range, (100,200] high-performance, > 200 commercial.
// Unknown horsepower (0) falls into portable.
func ClassifyPower(hp float64) domain.PowerCategory {
	switch {
	case hp <= 30:
		return domain.PowerPortable
	case hp <= 100:
		return domain.PowerMidRange
	case hp <= 200:
		return domain.PowerHighPerformance
	default:
		return domain.PowerCommercial
	}
}

// NormalizeBrand returns the first allow-listed brand contained in vendor
// (case-sensitive), else the first word of the title, else "Unknown".
func NormalizeBrand(vendor, title string) string {
	for _, brand := range knownBrands {
		if strings.Contains(vendor, brand) {
			return brand
		}
	}

	if fields := strings.Fields(title); len(fields) > 0 {
		return fields[0]
	}
	return domain.UnknownBrand
}
