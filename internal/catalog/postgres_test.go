package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
)

type execRecorder struct {
	execs []string
}

type stubConnector struct {
	rec *execRecorder
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{rec: c.rec}, nil
}

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use connector")
}

type stubConn struct {
	rec *execRecorder
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.rec.execs = append(c.rec.execs, query)
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &stubRows{}, nil
}

type stubRows struct{}

func (r *stubRows) Columns() []string {
	return []string{"name", "description", "xml", "created_at", "updated_at"}
}

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next([]driver.Value) error { return io.EOF }

func newStubDB() (*sql.DB, *execRecorder) {
	rec := &execRecorder{}
	return sql.OpenDB(stubConnector{rec: rec}), rec
}

func (r *execRecorder) has(fragment string) bool {
	for _, stmt := range r.execs {
		if strings.Contains(stmt, fragment) {
			return true
		}
	}
	return false
}

func TestNewPostgresStoreEnsuresTable(t *testing.T) {
	db, rec := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewPostgresStore("")
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	if !rec.has("CREATE TABLE IF NOT EXISTS documents") {
		t.Fatalf("expected documents DDL, got %v", rec.execs)
	}
}

func TestPostgresStorePutAndDelete(t *testing.T) {
	db, rec := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewPostgresStore("postgres://stub/simconfig")
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if _, err := store.Put(ctx, sampleRecord("baseline")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !rec.has("ON CONFLICT(name) DO UPDATE") {
		t.Fatalf("expected upsert statement, got %v", rec.execs)
	}

	got, err := store.Get(ctx, "baseline")
	if err != nil || got.Name != "baseline" {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if err := store.Delete(ctx, "baseline"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !rec.has("DELETE FROM documents") {
		t.Fatalf("expected delete statement, got %v", rec.execs)
	}
	var nf ErrNotFound
	if _, err := store.Get(ctx, "baseline"); !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("refused")
	})
	defer restore()

	if _, err := NewPostgresStore(""); err == nil {
		t.Fatal("expected open error")
	}
}
