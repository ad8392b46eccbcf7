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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, e *models.EncryptedEntry) error {
	query := `INSERT INTO entries (id, overview, nonce_overview, details, nonce_details, deleted)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			overview = excluded.overview,
			nonce_overview = excluded.nonce_overview,
			details = excluded.details,
			nonce_details = excluded.nonce_details,
			deleted = 0`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Overview, e.NonceOverview, e.Details, e.NonceDetails)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.EncryptedEntry, error) {
	query := `SELECT id, overview, nonce_overview, details, nonce_details FROM entries WHERE deleted = 0 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.EncryptedEntry
	for rows.Next() {
		item := &models.EncryptedEntry{}
		if err := rows.Scan(&item.ID, &item.Overview, &item.NonceOverview, &item.Details, &item.NonceDetails); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.EncryptedEntry, error) {
	query := `SELECT id, overview, nonce_overview, details, nonce_details FROM entries WHERE deleted = 0 AND id = ?`
	e := &models.EncryptedEntry{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.Overview, &e.NonceOverview, &e.Details, &e.NonceDetails)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return checkDeleted(res, id)
}

func checkDeleted(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
	default:
		return fmt.Errorf("wrong rows affected count: %d", n)
	}
}
