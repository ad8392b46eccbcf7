package config

import (
	"fmt"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
)

// Attachment backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// S3Config addresses an S3-compatible bucket used as the attachment backend.
type S3Config struct {
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	BaseEndpoint string `json:"base_endpoint"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
}

type Config struct {
	DatabaseDialect   dbx.Dialect
	DatabaseDSN       string
	AttachmentBackend string
	ExportDir         string
	LogLevel          string
	S3                S3Config
}

// LoadDefaults populates c with a local SQLite vault and local attachments.
func (c *Config) LoadDefaults() {
	c.DatabaseDialect = dbx.DialectSQLite
	c.DatabaseDSN = "entrykeeper.db"
	c.AttachmentBackend = BackendLocal
	c.ExportDir = "."
	c.LogLevel = "info"
	c.S3 = S3Config{Region: "us-east-1"}
}

// Validate checks values that cannot be caught while parsing.
func (c *Config) Validate() error {
	if _, err := c.DatabaseDialect.DriverName(); err != nil {
		return err
	}
	switch c.AttachmentBackend {
	case BackendLocal:
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("attachment backend %q needs s3.bucket", BackendS3)
		}
	default:
		return fmt.Errorf("unknown attachment backend %q", c.AttachmentBackend)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file named in args (if any),
// then the flags in args. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
