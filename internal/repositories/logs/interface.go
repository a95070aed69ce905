// Package logs persists grow-log entries in the local SQLite database.
package logs

import (
	"context"

	"github.com/growkeeper/growkeeper/internal/models"
)

type Repository interface {
	Upsert(ctx context.Context, l models.GrowLog) error
	GetAll(ctx context.Context) ([]models.GrowLog, error)
	// GetByBatch returns the logs whose batchId member equals batchID.
	GetByBatch(ctx context.Context, batchID string) ([]models.GrowLog, error)
	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
