package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/flagx"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the current value alone.
type JSONConfig struct {
	DatabaseDialect   string    `json:"database_dialect"`
	DatabaseDSN       string    `json:"database_dsn"`
	AttachmentBackend string    `json:"attachment_backend"`
	ExportDir         string    `json:"export_dir"`
	LogLevel          string    `json:"log_level"`
	S3                *S3Config `json:"s3"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setIf(&cfg.AttachmentBackend, jc.AttachmentBackend)
	setIf(&cfg.ExportDir, jc.ExportDir)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.DatabaseDialect != "" {
		cfg.DatabaseDialect = dbx.Dialect(jc.DatabaseDialect)
	}
	if jc.S3 != nil {
		s := jc.S3
		setIf(&cfg.S3.Bucket, s.Bucket)
		setIf(&cfg.S3.Region, s.Region)
		setIf(&cfg.S3.BaseEndpoint, s.BaseEndpoint)
		setIf(&cfg.S3.AccessKey, s.AccessKey)
		setIf(&cfg.S3.SecretKey, s.SecretKey)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
