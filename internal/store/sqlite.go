package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/growkeeper/growkeeper/internal/backup"
	"github.com/growkeeper/growkeeper/internal/dbx"
	"github.com/growkeeper/growkeeper/internal/models"
	"github.com/growkeeper/growkeeper/internal/repositories/batches"
	"github.com/growkeeper/growkeeper/internal/repositories/logs"
	"github.com/growkeeper/growkeeper/internal/repositories/settings"
)

// settingsKey is the row of the settings table holding the settings object.
const settingsKey = "app"

// records implements the record operations over any dbx.DBTX, so the same
// code serves both the database and a transaction.
type records struct {
	batches  batches.Repository
	logs     logs.Repository
	settings settings.Repository
}

func newRecords(db dbx.DBTX) *records {
	return &records{
		batches:  batches.NewSQLiteRepository(db),
		logs:     logs.NewSQLiteRepository(db),
		settings: settings.NewSQLiteRepository(db),
	}
}

func (r *records) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return r.batches.GetAll(ctx)
}

func (r *records) GetBatch(ctx context.Context, id string) (models.Batch, error) {
	return r.batches.GetByID(ctx, id)
}

func (r *records) ListLogs(ctx context.Context) ([]models.GrowLog, error) {
	return r.logs.GetAll(ctx)
}

func (r *records) LogsOfBatch(ctx context.Context, batchID string) ([]models.GrowLog, error) {
	return r.logs.GetByBatch(ctx, batchID)
}

func (r *records) GetSettings(ctx context.Context) (models.Settings, error) {
	raw, err := r.settings.Get(ctx, settingsKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return models.DefaultSettings(), nil
	}

	var s models.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("stored settings are malformed: %w", err)
	}
	return s.OrDefault(), nil
}

func (r *records) UpsertBatch(ctx context.Context, b models.Batch) error {
	return r.batches.Upsert(ctx, b)
}

func (r *records) UpsertLog(ctx context.Context, l models.GrowLog) error {
	return r.logs.Upsert(ctx, l)
}

func (r *records) ReplaceSettings(ctx context.Context, s models.Settings) error {
	raw, err := json.Marshal(s.OrDefault())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.settings.Set(ctx, settingsKey, raw)
}

func (r *records) DeleteBatch(ctx context.Context, id string) error {
	return r.batches.DeleteByID(ctx, id)
}

func (r *records) DeleteLog(ctx context.Context, id string) error {
	return r.logs.DeleteByID(ctx, id)
}

func (r *records) clear(ctx context.Context) error {
	if err := r.logs.Clear(ctx); err != nil {
		return err
	}
	if err := r.batches.Clear(ctx); err != nil {
		return err
	}
	return r.settings.Clear(ctx)
}

// SQLiteStore is the on-disk record store.
type SQLiteStore struct {
	*records
	db *sql.DB
}

var (
	_ backup.RecordStore = (*SQLiteStore)(nil)
	_ backup.Transactor  = (*SQLiteStore)(nil)
)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{records: newRecords(db), db: db}
}

// Open initializes the database at dsn and wraps it in a store.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithinTx runs fn against a store bound to a single transaction.
// The store passed to fn must not be used after fn returns.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, rs backup.RecordStore) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRecords(tx))
	})
}

// Reset deletes every batch, log and the saved settings.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return newRecords(tx).clear(ctx)
	})
}
