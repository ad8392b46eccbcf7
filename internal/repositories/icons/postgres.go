package icons

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, icon *models.EncryptedIcon) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_icons (id, data, nonce) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, nonce = EXCLUDED.nonce
	`, icon.ID, icon.Data, icon.Nonce)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.EncryptedIcon, error) {
	return scanIcons(ctx, r.db, `SELECT id, data, nonce FROM custom_icons ORDER BY id`)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_icons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkDeleted(res, id)
}

func scanIcons(ctx context.Context, db dbx.DBTX, query string) ([]*models.EncryptedIcon, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select icons: %w", err)
	}
	defer rows.Close()

	var result []*models.EncryptedIcon
	for rows.Next() {
		icon := &models.EncryptedIcon{}
		if err := rows.Scan(&icon.ID, &icon.Data, &icon.Nonce); err != nil {
			return nil, fmt.Errorf("failed to scan icon: %w", err)
		}
		result = append(result, icon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func checkDeleted(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("icon %s: %w", id, common.ErrorNotFound)
	}
	return nil
}
