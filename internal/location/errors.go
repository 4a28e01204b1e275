package location

import "errors"

var (
	// ErrGeocoding wraps failures reaching or decoding the geocoding provider.
	ErrGeocoding = errors.New("geocoding lookup failed")

	// ErrStore wraps failures of the underlying store.
	ErrStore = errors.New("location store failed")
)
