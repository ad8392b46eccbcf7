package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/migrations"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/icons"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/metadata"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager backs the local vault file.
type SQLiteRepositoryManager struct {
	Log logging.Logger
}

func (m *SQLiteRepositoryManager) Dialect() dbx.Dialect { return dbx.DialectSQLite }

func (m *SQLiteRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Icons(db dbx.DBTX) icons.Repository {
	return icons.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(newGooseLogger(m.Log))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.SQLiteDir)
}
