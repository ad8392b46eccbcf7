// Package entries persists sealed vault entries.
//
// Two implementations share the Repository contract: SQLiteRepository for
// the local vault file and PostgresRepository for a shared server database.
// Both work over a dbx.DBTX so callers can run them inside dbx.WithTx.
// Deletion is soft: rows keep their ciphertext with deleted set.
package entries

import (
	"context"

	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

type Repository interface {
	// CreateOrUpdate upserts a row by ID and clears the deleted flag.
	CreateOrUpdate(ctx context.Context, e *models.EncryptedEntry) error

	// GetAll returns every non-deleted row with all columns.
	GetAll(ctx context.Context) ([]*models.EncryptedEntry, error)

	// GetByID returns one non-deleted row or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.EncryptedEntry, error)

	// DeleteByID soft-deletes a row; common.ErrorNotFound if none matched.
	DeleteByID(ctx context.Context, id string) error
}
