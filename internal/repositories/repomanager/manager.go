// Package repomanager vends dialect-specific repositories and runs the
// embedded goose migrations for that dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/icons"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/metadata"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	Dialect() dbx.Dialect
	RunMigrations(ctx context.Context, db *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	Icons(db dbx.DBTX) icons.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// New returns the manager for dialect. Migration progress goes to log at
// debug level; a nil log silences it.
func New(dialect dbx.Dialect, log logging.Logger) (RepositoryManager, error) {
	switch dialect {
	case dbx.DialectSQLite:
		return &SQLiteRepositoryManager{Log: log}, nil
	case dbx.DialectPostgres:
		return &PostgresRepositoryManager{Log: log}, nil
	default:
		return nil, fmt.Errorf("no repositories for dialect %q", string(dialect))
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseLogger routes goose output through the application logger so it
// stays out of the interactive prompt.
type gooseLogger struct {
	log logging.Logger
}

func newGooseLogger(l logging.Logger) goose.Logger {
	if l == nil {
		return goose.NopLogger()
	}
	return gooseLogger{log: l.With("component", "goose")}
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
