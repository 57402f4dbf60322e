// Package migrations embeds the goose SQL migrations for each supported
// log-store dialect. Each dialect lives in its own directory.
package migrations

import "embed"

// Directories inside Migrations.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
