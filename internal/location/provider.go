package location

import "context"

// Geocoder resolves a free-text place name into ranked candidates.
// A nil slice means the provider returned no results at all.
type Geocoder interface {
	Search(ctx context.Context, name string) ([]Candidate, error)
}

// Store is the contract every saved-location store must satisfy.
type Store interface {
	// Upsert inserts loc or overwrites the coordinates of the record with
	// the same identity.
	Upsert(ctx context.Context, loc SavedLocation) error
	// List returns every record in store order.
	List(ctx context.Context) ([]SavedLocation, error)
	// DeleteAll removes every record and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
