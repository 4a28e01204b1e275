package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/i474232898/location-weather/internal/location"
)

const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// connectionTimeout bounds the initial ping.
	connectionTimeout = 5 * time.Second

	// busyTimeoutMs is how long a writer waits for the database lock.
	busyTimeoutMs = 5000
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_locations (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	state      TEXT NOT NULL DEFAULT '',
	country    TEXT NOT NULL,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (name, state, country)
)`

// SQLiteStore persists saved locations in a single SQLite table.
// The (name, state, country) unique constraint backs the upsert.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", path, busyTimeoutMs)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Upsert inserts loc or overwrites the coordinates of the record with the same identity.
func (s *SQLiteStore) Upsert(ctx context.Context, loc location.SavedLocation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_locations (id, name, state, country, latitude, longitude, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, state, country) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at`,
		uuid.NewString(), loc.Name, loc.State, loc.Country, loc.Latitude, loc.Longitude,
		loc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting location: %w", err)
	}
	return nil
}

// List returns every record in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]location.SavedLocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, state, country, latitude, longitude, updated_at
		FROM saved_locations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	out := make([]location.SavedLocation, 0)
	for rows.Next() {
		var (
			loc       location.SavedLocation
			updatedAt string
		)
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.State, &loc.Country, &loc.Latitude, &loc.Longitude, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			loc.UpdatedAt = ts
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}
	return out, nil
}

// DeleteAll removes every record.
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_locations`)
	if err != nil {
		return 0, fmt.Errorf("deleting locations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted locations: %w", err)
	}
	return n, nil
}

// Path returns the filesystem path to the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close(context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
