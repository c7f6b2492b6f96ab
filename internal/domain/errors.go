package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when a product cannot be found upstream or
	// when the record found is not a valid product
	ErrProductNotFound = errors.New("product not found")

	// ErrValidation is returned when a product record misses a required field (handle, title)
	ErrValidation = errors.New("product validation failed")

	// ErrSkippableRow marks a CSV row or GraphQL edge that cannot be read as a variant or image
	ErrSkippableRow = errors.New("row skipped")

	// ErrUpstreamShape is returned when an upstream field has an unexpected JSON shape
	ErrUpstreamShape = errors.New("unexpected upstream shape")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUpstreamFailure is returned when the storefront API request fails
	ErrUpstreamFailure = errors.New("storefront API request failed")
)

// RowError describes one skipped row/edge. It wraps ErrSkippableRow.
type RowError struct {
	Handle string
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: handle %q row %d: %s", ErrSkippableRow, e.Handle, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s: handle %q: %s", ErrSkippableRow, e.Handle, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrSkippableRow
}
