package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns; everything else in args
// is ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-dsn", "-b", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	dialect := fs.String("d", string(cfg.DatabaseDialect), "database dialect (sqlite, postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "database data source name")
	fs.StringVar(&cfg.AttachmentBackend, "b", cfg.AttachmentBackend, "attachment backend (local, s3)")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "default export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.DatabaseDialect = dbx.Dialect(*dialect)
	return nil
}
