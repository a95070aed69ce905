package batches

import (
	"context"

	"github.com/growkeeper/growkeeper/internal/models"
)

// Repository describes storage operations for batches.
type Repository interface {
	// Upsert inserts the batch or replaces the stored batch with the same id.
	Upsert(ctx context.Context, b models.Batch) error

	// GetAll returns every batch in insertion order.
	GetAll(ctx context.Context) ([]models.Batch, error)

	// GetByID returns common.ErrorNotFound when no batch has that id.
	GetByID(ctx context.Context, id string) (models.Batch, error)

	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
