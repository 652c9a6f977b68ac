// Package sqlite persists registry state to a single-file SQLite database as
// JSON snapshots, one row per registry.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"indexfund-api/internal/persistence/codec"
	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

var _ host.Store = (*Store)(nil)

// Store is a host.Store backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating when needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "indexfund.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS registry_state (
		registry_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create registry_state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load decodes the snapshot for registryID.
func (s *Store) Load(ctx context.Context, registryID string) (*registry.State, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM registry_state WHERE registry_id = ?`, registryID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, host.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select registry_state: %w", err)
	}
	var doc codec.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode registry_state %s: %w", registryID, err)
	}
	st, err := doc.State()
	if err != nil {
		return nil, fmt.Errorf("decode registry_state %s: %w", registryID, err)
	}
	return st, nil
}

// Save upserts the snapshot for registryID in one statement.
func (s *Store) Save(ctx context.Context, registryID string, state registry.State) error {
	data, err := json.Marshal(codec.Encode(state))
	if err != nil {
		return fmt.Errorf("encode registry_state: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO registry_state(registry_id, payload, updated_at) VALUES(?,?,?)
		ON CONFLICT(registry_id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		registryID, data, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert registry_state %s: %w", registryID, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
