package backup

import (
	"context"

	"github.com/growkeeper/growkeeper/internal/models"
)

// RecordStore is the persistence the orchestrator reads from and replays into.
type RecordStore interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListLogs(ctx context.Context) ([]models.GrowLog, error)
	GetSettings(ctx context.Context) (models.Settings, error)

	// UpsertBatch and UpsertLog insert or replace by record id.
	UpsertBatch(ctx context.Context, b models.Batch) error
	UpsertLog(ctx context.Context, l models.GrowLog) error
	ReplaceSettings(ctx context.Context, s models.Settings) error
}

// Transactor is implemented by stores that can run a group of operations
// atomically. fn receives a store bound to the transaction; returning an
// error from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s RecordStore) error) error
}
