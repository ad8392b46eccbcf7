package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, e *models.EncryptedEntry) error {
	query := `
		INSERT INTO entries (id, overview, nonce_overview, details, nonce_details, deleted)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (id)
		DO UPDATE SET
			overview = EXCLUDED.overview,
			nonce_overview = EXCLUDED.nonce_overview,
			details = EXCLUDED.details,
			nonce_details = EXCLUDED.nonce_details,
			deleted = FALSE;
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Overview, e.NonceOverview, e.Details, e.NonceDetails)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.EncryptedEntry, error) {
	query := `SELECT id, overview, nonce_overview, details, nonce_details FROM entries WHERE NOT deleted ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.EncryptedEntry
	for rows.Next() {
		var item models.EncryptedEntry
		if err := rows.Scan(&item.ID, &item.Overview, &item.NonceOverview, &item.Details, &item.NonceDetails); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.EncryptedEntry, error) {
	query := `SELECT id, overview, nonce_overview, details, nonce_details FROM entries WHERE id = $1 AND NOT deleted`
	var e models.EncryptedEntry
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.Overview, &e.NonceOverview, &e.Details, &e.NonceDetails)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET deleted = TRUE WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkDeleted(res, id)
}
