package logs

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) Upsert(ctx context.Context, l models.GrowLog) error {
	if l.ID() == "" {
		return models.ErrRecordNoID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO logs (id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, l.ID(), string(l.Raw()))
	if err != nil {
		return fmt.Errorf("failed to upsert log[%s]: %w", l.ID(), err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.GrowLog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM logs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	return scanLogs(rows)
}

func (r *SQLiteRepository) GetByBatch(ctx context.Context, batchID string) ([]models.GrowLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM logs WHERE json_extract(data, '$.batchId') = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs of batch[%s]: %w", batchID, err)
	}
	return scanLogs(rows)
}

func scanLogs(rows *sql.Rows) ([]models.GrowLog, error) {
	defer rows.Close()

	result := []models.GrowLog{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		rec, err := models.ParseRecord(data)
		if err != nil {
			return nil, fmt.Errorf("stored log is malformed: %w", err)
		}
		result = append(result, models.GrowLog{Record: rec})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete log[%s]: %w", id, err)
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
	if _, err := r.db.ExecContext(ctx, `DELETE FROM logs`); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	return nil
}
