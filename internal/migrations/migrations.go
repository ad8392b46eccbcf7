// Package migrations embeds the goose schema migrations for each supported
// dialect. Each dialect lives in its own directory of FS.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
