package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore persists catalog records to an embedded SQLite file. Reads are
// served by the hydrated in-memory store; every write goes through to the
// documents table before the in-memory state is updated.
type SQLiteStore struct {
	*MemoryStore
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the catalog database at path and hydrates
// the in-memory state from it.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "simconfig.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		xml BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	s := &SQLiteStore{MemoryStore: NewMemoryStore(), db: db, path: path}
	if err := s.load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, xml, created_at, updated_at FROM documents`)
	if err != nil {
		return fmt.Errorf("select documents: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.Description, &r.XML, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}
	s.importRecords(records)
	return nil
}

// Put upserts the record in SQLite first, then in memory.
func (s *SQLiteStore) Put(ctx context.Context, record Record) (Record, error) {
	stored, err := s.MemoryStore.Put(ctx, record)
	if err != nil {
		return Record{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(name,description,xml,created_at,updated_at) VALUES(?,?,?,?,?)
		 ON CONFLICT(name) DO UPDATE SET description=excluded.description, xml=excluded.xml, updated_at=excluded.updated_at`,
		stored.Name, stored.Description, stored.XML, stored.CreatedAt, stored.UpdatedAt); err != nil {
		return Record{}, fmt.Errorf("upsert document %s: %w", stored.Name, err)
	}
	return stored, nil
}

// Delete removes the record from SQLite and memory.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := s.MemoryStore.Delete(ctx, name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete document %s: %w", name, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }
