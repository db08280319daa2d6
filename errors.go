package orrery

import "fmt"

// CatalogParseError is returned when the orbital elements source, or one of its entries, is malformed.
// An empty Key means the whole source could not be read.
type CatalogParseError struct {
	Key BodyKey
	Err error
}

func (e *CatalogParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("catalog: %s", e.Err)
	}
	return fmt.Sprintf("catalog entry '%s': %s", e.Key, e.Err)
}

func (e *CatalogParseError) Unwrap() error {
	return e.Err
}

// DegenerateOrbitError is returned when an orbit cannot be computed, typically
// because its semi-major axis is not strictly positive and finite.
type DegenerateOrbitError struct {
	Body BodyKey
	A    float64 // Semi-major axis in km
}

func (e *DegenerateOrbitError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("degenerate orbit (a=%g km)", e.A)
	}
	return fmt.Sprintf("degenerate orbit for '%s' (a=%g km)", e.Body, e.A)
}
