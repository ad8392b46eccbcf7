package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_HasBothDialects(t *testing.T) {
	for _, dir := range []string{SQLiteDir, PostgresDir} {
		files, err := fs.Glob(FS, dir+"/*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, files, dir)

		data, err := fs.ReadFile(FS, files[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up")
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS entries")
	}
}
