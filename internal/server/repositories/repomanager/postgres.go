// Package repomanager picks the log-store dialect (PostgreSQL or SQLite),
// vends its repositories and runs the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/server/migrations"
	"github.com/dmitrijs2005/secanalytics/internal/server/repositories/loginlogs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) DriverName() string {
	return "pgx"
}

// LoginLogs returns a loginlogs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) LoginLogs(db dbx.DBTX) loginlogs.Repository {
	return loginlogs.NewPostgresRepository(db)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.PostgresDir)
}
