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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager backs a vault kept in a shared Postgres database.
type PostgresRepositoryManager struct {
	Log logging.Logger
}

func (m *PostgresRepositoryManager) Dialect() dbx.Dialect { return dbx.DialectPostgres }

func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Icons(db dbx.DBTX) icons.Repository {
	return icons.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(newGooseLogger(m.Log))
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.PostgresDir)
}
