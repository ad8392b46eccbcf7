// Package icons persists sealed custom icon images.
package icons

import (
	"context"

	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

type Repository interface {
	// Add stores an icon. Adding an existing ID replaces its data.
	Add(ctx context.Context, icon *models.EncryptedIcon) error
	GetAll(ctx context.Context) ([]*models.EncryptedIcon, error)
	// Delete removes an icon; common.ErrorNotFound if it was not stored.
	Delete(ctx context.Context, id string) error
}
