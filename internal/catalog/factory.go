package catalog

import (
	"fmt"
	"os"
)

// Driver identifies a concrete catalog storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Open selects a backend using environment variables. Defaults to sqlite
// when unset.
//
//	SIMCONFIG_CATALOG_DRIVER: memory|sqlite|postgres (default sqlite)
//	SIMCONFIG_SQLITE_PATH: path to sqlite file (default ./simconfig.db)
//	SIMCONFIG_POSTGRES_DSN: postgres DSN when driver=postgres
func Open() (Store, error) {
	driver := os.Getenv("SIMCONFIG_CATALOG_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(os.Getenv("SIMCONFIG_SQLITE_PATH"))
	case DriverPostgres:
		return NewPostgresStore(os.Getenv("SIMCONFIG_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown catalog driver %s", driver)
	}
}
