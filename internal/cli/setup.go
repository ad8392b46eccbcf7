package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/entrykeeper/internal/config"
	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/filex"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/entrykeeper/internal/services"
)

// Setup opens the database, migrates it and wires the vault service into an
// App reading from in and writing to out. The returned func closes the
// database.
func Setup(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, func() error, error) {
	db, err := dbx.Open(ctx, cfg.DatabaseDialect, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	app, err := setup(ctx, cfg, log, db, in, out)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return app, db.Close, nil
}

func setup(ctx context.Context, cfg *config.Config, log logging.Logger, db *sql.DB, in io.Reader, out io.Writer) (*App, error) {
	repos, err := repomanager.New(cfg.DatabaseDialect, log)
	if err != nil {
		return nil, err
	}
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	files, err := newFileAccess(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "vault opened",
		"dialect", string(cfg.DatabaseDialect),
		"attachments", cfg.AttachmentBackend,
	)
	svc := services.NewVaultService(db, repos, files, log)
	return NewApp(cfg, svc, in, out), nil
}

func newFileAccess(ctx context.Context, cfg *config.Config) (filex.FileAccess, error) {
	switch cfg.AttachmentBackend {
	case config.BackendS3:
		client, err := filex.NewS3Client(ctx, filex.S3Options{
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.BaseEndpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return filex.NewS3FileAccess(client, cfg.S3.Bucket), nil
	default:
		return filex.NewLocalFileAccess(), nil
	}
}
