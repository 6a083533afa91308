package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	postgresDriver = "pgx"
	// Default DSN keeps parity with Open defaults while allowing overrides via env.
	defaultPostgresDSN = "postgres://localhost/simconfig?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// PostgresStore persists catalog records to PostgreSQL while serving reads
// from the hydrated in-memory state.
type PostgresStore struct {
	*MemoryStore
	db *sql.DB
}

// NewPostgresStore opens a Postgres-backed catalog using the provided DSN
// (falls back to defaultPostgresDSN), ensures the documents table exists,
// and hydrates the in-memory state from it.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	openMu.Lock()
	db, err := sqlOpen(postgresDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		xml BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	s := &PostgresStore{MemoryStore: NewMemoryStore(), db: db}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) load(ctx context.Context) error {
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

// Put upserts the record in Postgres first, then in memory.
func (s *PostgresStore) Put(ctx context.Context, record Record) (Record, error) {
	stored, err := s.MemoryStore.Put(ctx, record)
	if err != nil {
		return Record{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(name,description,xml,created_at,updated_at) VALUES($1,$2,$3,$4,$5)
		 ON CONFLICT(name) DO UPDATE SET description=EXCLUDED.description, xml=EXCLUDED.xml, updated_at=EXCLUDED.updated_at`,
		stored.Name, stored.Description, stored.XML, stored.CreatedAt, stored.UpdatedAt); err != nil {
		return Record{}, fmt.Errorf("upsert document %s: %w", stored.Name, err)
	}
	return stored, nil
}

// Delete removes the record from Postgres and memory.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	if err := s.MemoryStore.Delete(ctx, name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete document %s: %w", name, err)
	}
	return nil
}

// Close releases the database handle.
func (s *PostgresStore) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *PostgresStore) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
