package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, dbx.DialectSQLite, c.DatabaseDialect)
	assert.Equal(t, BackendLocal, c.AttachmentBackend)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, `{
		"database_dialect": "postgres",
		"database_dsn": "postgres://json",
		"attachment_backend": "s3",
		"log_level": "warn",
		"s3": {"bucket": "att", "base_endpoint": "http://minio:9000", "access_key": "ak", "secret_key": "sk"}
	}`)

	cfg, err := LoadConfig([]string{"-c", path, "-dsn", "postgres://flag", "-l", "debug", "-unrelated", "x"})
	require.NoError(t, err)

	want := &Config{
		DatabaseDialect:   dbx.DialectPostgres,
		DatabaseDSN:       "postgres://flag",
		AttachmentBackend: BackendS3,
		ExportDir:         ".",
		LogLevel:          "debug",
		S3: S3Config{
			Bucket:       "att",
			Region:       "us-east-1",
			BaseEndpoint: "http://minio:9000",
			AccessKey:    "ak",
			SecretKey:    "sk",
		},
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_NoSources(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoadConfig_Errors(t *testing.T) {
	bad := writeTempJSON(t, `{ this is not valid json`)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid json", []string{"-config", bad}},
		{"missing json file", []string{"-c", filepath.Join(t.TempDir(), "nope.json")}},
		{"unknown dialect", []string{"-d", "oracle"}},
		{"unknown backend", []string{"-b", "ftp"}},
		{"s3 without bucket", []string{"-b", "s3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			require.Error(t, err)
		})
	}
}
