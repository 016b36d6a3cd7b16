// Package store reads points of interest from the locations database. The
// table is owned by another system; this side only ever selects from it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

// maxLocations bounds a single listing query.
const maxLocations = 10000

// Locations is a read-only repository over the locations table.
type Locations struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the locations database read-only.
func Open(dbPath string, logger *slog.Logger) (*Locations, error) {
	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening locations db: %w", err)
	}
	return &Locations{db: db, logger: logger}, nil
}

// OpenWritable opens the database read-write and creates the schema if it
// is missing. Used by tests and local seeding, never by the service.
func OpenWritable(dbPath string, logger *slog.Logger) (*Locations, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening locations db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Locations{db: db, logger: logger}, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS locations (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		type          TEXT NOT NULL,
		lat           REAL NOT NULL,
		lng           REAL NOT NULL,
		cam_embed_url TEXT NOT NULL DEFAULT '',
		is_open       INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name);
`

func (l *Locations) Close() error {
	return l.db.Close()
}

// All returns every location ordered by name, capped at the listing bound.
func (l *Locations) All(ctx context.Context) ([]domain.Location, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, type, lat, lng, cam_embed_url, is_open
		FROM locations
		ORDER BY name
		LIMIT ?`, maxLocations)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var (
			loc    domain.Location
			isOpen sql.NullBool
		)
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Type, &loc.Lat, &loc.Lng, &loc.CamEmbedURL, &isOpen); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		if isOpen.Valid {
			open := isOpen.Bool
			loc.IsOpen = &open
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading locations: %w", err)
	}

	l.logger.Debug("locations loaded", "count", len(locations))
	return locations, nil
}

// Insert adds one location. Test and seeding helper; requires a writable
// handle from OpenWritable.
func (l *Locations) Insert(ctx context.Context, loc domain.Location) error {
	var isOpen any
	if loc.IsOpen != nil {
		isOpen = *loc.IsOpen
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO locations (id, name, type, lat, lng, cam_embed_url, is_open)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.Name, loc.Type, loc.Lat, loc.Lng, loc.CamEmbedURL, isOpen)
	if err != nil {
		return fmt.Errorf("inserting location: %w", err)
	}
	return nil
}
