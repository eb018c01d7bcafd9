// Package storage loads enriched trip records into a local SQLite database
// for downstream querying.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Storage wraps the SQLite database holding enriched trips.
type Storage struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if necessary) the SQLite database at dbPath and
// ensures the schema exists.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS trips (
	trip_id TEXT PRIMARY KEY,
	vendor_id INTEGER NOT NULL,
	pickup_datetime TIMESTAMP NOT NULL,
	dropoff_datetime TIMESTAMP NOT NULL,
	passenger_count INTEGER NOT NULL,
	pickup_longitude REAL NOT NULL,
	pickup_latitude REAL NOT NULL,
	dropoff_longitude REAL NOT NULL,
	dropoff_latitude REAL NOT NULL,
	store_and_fwd_flag TEXT NOT NULL DEFAULT 'N',
	trip_duration INTEGER NOT NULL,
	trip_distance REAL,
	trip_speed REAL,
	idle_time INTEGER,
	trip_efficiency REAL,
	time_of_day TEXT,
	day_of_week TEXT,
	is_weekend BOOLEAN NOT NULL DEFAULT 0,
	is_valid BOOLEAN NOT NULL DEFAULT 1,
	quality_score INTEGER NOT NULL DEFAULT 100,
	anomaly_flags TEXT
);

CREATE INDEX IF NOT EXISTS idx_trips_pickup_datetime ON trips(pickup_datetime);
CREATE INDEX IF NOT EXISTS idx_trips_is_valid ON trips(is_valid);

CREATE TABLE IF NOT EXISTS trip_statistics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date_period TEXT NOT NULL,
	hour_period INTEGER NOT NULL,
	total_trips INTEGER NOT NULL,
	avg_duration REAL,
	avg_distance REAL,
	avg_speed REAL,
	total_passengers INTEGER
);
`

func (s *Storage) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CountTrips returns the total number of trips in the store.
func (s *Storage) CountTrips(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

// CountValidTrips returns the number of trips without an outlier annotation.
func (s *Storage) CountValidTrips(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips WHERE is_valid = 1").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count valid trips: %w", err)
	}
	return count, nil
}
