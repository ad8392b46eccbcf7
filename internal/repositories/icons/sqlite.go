package icons

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, icon *models.EncryptedIcon) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_icons (id, data, nonce) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, nonce = excluded.nonce
	`, icon.ID, icon.Data, icon.Nonce)
	if err != nil {
		return fmt.Errorf("failed to save icon %s: %w", icon.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.EncryptedIcon, error) {
	return scanIcons(ctx, r.db, `SELECT id, data, nonce FROM custom_icons ORDER BY id`)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_icons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete icon %s: %w", id, err)
	}
	return checkDeleted(res, id)
}
