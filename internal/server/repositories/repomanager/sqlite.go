package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/server/migrations"
	"github.com/dmitrijs2005/secanalytics/internal/server/repositories/loginlogs"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) DriverName() string {
	return "sqlite"
}

func (m *SQLiteRepositoryManager) LoginLogs(db dbx.DBTX) loginlogs.Repository {
	return loginlogs.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.SQLiteDir)
}
