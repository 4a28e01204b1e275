package weather

import "errors"

var (
	// ErrNoProvider is returned when the service has no weather provider.
	ErrNoProvider = errors.New("no weather provider configured")

	// ErrListLocations wraps failures reading the saved locations.
	ErrListLocations = errors.New("listing saved locations failed")

	// ErrLookup wraps a failed weather lookup.
	ErrLookup = errors.New("weather lookup failed")
)
