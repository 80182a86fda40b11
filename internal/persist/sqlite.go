package persist

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marketbay/cartengine/internal/cart"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSlot is the slot name used when none is given.
const DefaultSlot = "cart"

// SQLite is a snapshot slot stored as a single row in a SQLite
// database. Useful when the host application already keeps its local
// state in SQLite and wants the cart in the same file.
type SQLite struct {
	db   *sql.DB
	slot string
}

// OpenSQLite creates or opens the database at path and ensures the
// snapshot table exists.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path, slot string) (*SQLite, error) {
	if slot == "" {
		slot = DefaultSlot
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect snapshot database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}

	return &SQLite{db: db, slot: slot}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the slot row. A missing row or malformed snapshot loads as
// an empty cart; query failures are returned.
func (s *SQLite) Load() ([]cart.LineItem, error) {
	var data string
	err := s.db.QueryRow(
		"SELECT items FROM cart_snapshots WHERE slot = ?", s.slot,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	items, err := DecodeSnapshot([]byte(data))
	if err != nil {
		return nil, nil
	}
	return items, nil
}

// Save upserts the slot row with the serialized items.
func (s *SQLite) Save(items []cart.LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO cart_snapshots (slot, items) VALUES (?, ?)
		ON CONFLICT(slot) DO UPDATE SET items = excluded.items
	`, s.slot, string(data))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
