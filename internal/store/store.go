// Package store holds the saved-location stores: MongoDB, SQLite and in-memory.
package store

import (
	"context"
	"fmt"

	"github.com/i474232898/location-weather/internal/config"
	"github.com/i474232898/location-weather/internal/location"
)

// Closer is a location.Store with an explicit lifecycle.
type Closer interface {
	location.Store
	Close(ctx context.Context) error
}

var (
	_ Closer = (*MemoryStore)(nil)
	_ Closer = (*SQLiteStore)(nil)
	_ Closer = (*MongoStore)(nil)
)

// Open builds the store selected by cfg.Driver. The caller owns the returned
// handle and must Close it on shutdown.
func Open(ctx context.Context, cfg config.StoreConfig) (Closer, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		s, err := OpenMongo(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
