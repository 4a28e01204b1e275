package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/location-weather/internal/location"
)

// MemoryStore is a concurrency-safe in-memory location store.
// Records are kept in insertion order; an upsert updates in place.
type MemoryStore struct {
	mu sync.RWMutex

	// value: index into records
	index   map[identity]int
	records []location.SavedLocation
}

// identity is the (name, state, country) triple as a comparable map key.
type identity struct {
	name, state, country string
}

func identityOf(loc location.SavedLocation) identity {
	return identity{name: loc.Name, state: loc.State, country: loc.Country}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[identity]int),
	}
}

// Upsert inserts loc or overwrites the coordinates of an existing record with
// the same identity. The stored ID never changes once assigned.
func (s *MemoryStore) Upsert(_ context.Context, loc location.SavedLocation) error {
	key := identityOf(loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[key]; ok {
		existing := s.records[i]
		existing.Latitude = loc.Latitude
		existing.Longitude = loc.Longitude
		existing.UpdatedAt = loc.UpdatedAt
		s.records[i] = existing
		return nil
	}

	loc.ID = uuid.NewString()
	s.index[key] = len(s.records)
	s.records = append(s.records, loc)
	return nil
}

// List returns a copy of every record in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]location.SavedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]location.SavedLocation, len(s.records))
	copy(out, s.records)
	return out, nil
}

// DeleteAll removes every record.
func (s *MemoryStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.records))
	s.records = nil
	s.index = make(map[identity]int)
	return n, nil
}

// Close is a no-op; it lets MemoryStore stand in wherever a closable store is expected.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
