package batches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/growkeeper/growkeeper/internal/common"
	"github.com/growkeeper/growkeeper/internal/dbx"
	"github.com/growkeeper/growkeeper/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, b models.Batch) error {
	if b.ID() == "" {
		return models.ErrRecordNoID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO batches (id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, b.ID(), string(b.Raw()))
	if err != nil {
		return fmt.Errorf("failed to upsert batch[%s]: %w", b.ID(), err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Batch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM batches ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select batches: %w", err)
	}
	defer rows.Close()

	result := []models.Batch{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		rec, err := models.ParseRecord(data)
		if err != nil {
			return nil, fmt.Errorf("stored batch is malformed: %w", err)
		}
		result = append(result, models.Batch{Record: rec})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.Batch, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM batches WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Batch{}, common.ErrorNotFound
	}
	if err != nil {
		return models.Batch{}, fmt.Errorf("failed to get batch[%s]: %w", id, err)
	}

	rec, err := models.ParseRecord(data)
	if err != nil {
		return models.Batch{}, fmt.Errorf("stored batch[%s] is malformed: %w", id, err)
	}
	return models.Batch{Record: rec}, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch[%s]: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batches`); err != nil {
		return fmt.Errorf("failed to clear batches: %w", err)
	}
	return nil
}
