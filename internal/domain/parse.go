package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount parses a decimal string, yielding 0 for empty or invalid input.
// Thousands separators and a leading currency symbol are tolerated.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseQuantity parses an integer quantity, yielding 0 for empty or invalid input.
// Decimal input ("3.0") is truncated.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f := ParseAmount(s)
	return int(f)
}

// FormatNumber renders a float without trailing zeros ("150", "9.9")
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
