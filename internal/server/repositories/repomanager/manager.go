package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/server/repositories/loginlogs"
	"github.com/pressly/goose/v3"
)

// Supported log-store backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type RepositoryManager interface {
	// DriverName is the database/sql driver to open connections with.
	DriverName() string
	RunMigrations(context.Context, *sql.DB) error
	LoginLogs(db dbx.DBTX) loginlogs.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New returns the manager for backend.
func New(backend string) (RepositoryManager, error) {
	switch backend {
	case BackendPostgres:
		return &PostgresRepositoryManager{}, nil
	case BackendSQLite, "":
		return &SQLiteRepositoryManager{}, nil
	default:
		return nil, fmt.Errorf("unknown log store backend %q", backend)
	}
}

// Open connects to dsn with the manager's driver and applies migrations.
func Open(ctx context.Context, m RepositoryManager, dsn string) (*sql.DB, error) {
	db, err := dbx.Open(ctx, m.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}
