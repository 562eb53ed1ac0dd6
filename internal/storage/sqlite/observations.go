package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// ObservationStore is the durable client-local store behind the METAR
// observation cache. It holds exactly one opaque serialized entry at a time
// (single-tenant, one dashboard instance).
type ObservationStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewObservationStore opens (or creates) the SQLite database at dbPath and
// ensures the cache table exists
func NewObservationStore(dbPath string, log *logger.Logger) (*ObservationStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if err := initDatabase(db); err != nil {
		db.Close()
		return nil, err
	}

	return &ObservationStore{
		db:     db,
		logger: log.Named("observation-store"),
	}, nil
}

func initDatabase(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS observation_cache (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload BLOB NOT NULL,
			saved_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating observation_cache table: %w", err)
	}
	return nil
}

// ReadPersisted returns the persisted entry, or ok=false when none exists
func (s *ObservationStore) ReadPersisted() ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM observation_cache WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading observation cache: %w", err)
	}
	return payload, true, nil
}

// WritePersisted fully replaces any existing entry
func (s *ObservationStore) WritePersisted(data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO observation_cache (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing observation cache: %w", err)
	}
	s.logger.Debug("Observation cache persisted", logger.Int("bytes", len(data)))
	return nil
}

// ClearPersisted removes the entry
func (s *ObservationStore) ClearPersisted() error {
	if _, err := s.db.Exec(`DELETE FROM observation_cache WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing observation cache: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *ObservationStore) Close() error {
	return s.db.Close()
}
