// Package config loads runtime configuration for the entrykeeper binary.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string    database dialect: sqlite or postgres
//	-dsn string  data source name for the dialect
//	-b string    attachment backend: local or s3
//	-e string    default directory for exported attachments
//	-l string    log level: debug, info, warn, error
//
// # JSON schema
//
//	{
//	  "database_dialect": "postgres",
//	  "database_dsn": "postgres://keeper@localhost/keeper",
//	  "attachment_backend": "s3",
//	  "s3": {
//	    "bucket": "attachments",
//	    "region": "us-east-1",
//	    "base_endpoint": "http://localhost:9000",
//	    "access_key": "minio",
//	    "secret_key": "minio123"
//	  }
//	}
//
// S3 settings are only read from JSON so secrets stay off the command line.
package config
