package store

import (
	"context"
	"slices"
	"sync"

	"github.com/growkeeper/growkeeper/internal/backup"
	"github.com/growkeeper/growkeeper/internal/common"
	"github.com/growkeeper/growkeeper/internal/models"
)

// Memory is a volatile record store. Records keep insertion order and
// upserts replace in place.
type Memory struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	batches  []models.Batch
	logs     []models.GrowLog
	settings models.Settings
}

var (
	_ backup.RecordStore = (*Memory)(nil)
	_ backup.Transactor  = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListBatches(context.Context) ([]models.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.batches), nil
}

func (m *Memory) GetBatch(_ context.Context, id string) (models.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexByID(m.batches, id); i >= 0 {
		return m.batches[i], nil
	}
	return models.Batch{}, common.ErrorNotFound
}

func (m *Memory) ListLogs(context.Context) ([]models.GrowLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.logs), nil
}

func (m *Memory) LogsOfBatch(_ context.Context, batchID string) ([]models.GrowLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.GrowLog{}
	for _, l := range m.logs {
		if e, err := l.Entry(); err == nil && e.BatchID == batchID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) GetSettings(context.Context) (models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.OrDefault().Clone(), nil
}

func (m *Memory) UpsertBatch(_ context.Context, b models.Batch) error {
	if b.ID() == "" {
		return models.ErrRecordNoID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = upsert(m.batches, b)
	return nil
}

func (m *Memory) UpsertLog(_ context.Context, l models.GrowLog) error {
	if l.ID() == "" {
		return models.ErrRecordNoID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = upsert(m.logs, l)
	return nil
}

func (m *Memory) ReplaceSettings(_ context.Context, s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.OrDefault().Clone()
	return nil
}

func (m *Memory) DeleteBatch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexByID(m.batches, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	m.batches = slices.Delete(m.batches, i, i+1)
	return nil
}

func (m *Memory) DeleteLog(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexByID(m.logs, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	m.logs = slices.Delete(m.logs, i, i+1)
	return nil
}

func (m *Memory) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches, m.logs, m.settings = nil, nil, nil
	return nil
}

// WithinTx snapshots the store, runs fn and restores the snapshot if fn
// fails. Transactions are serialized against each other only; writes made
// outside WithinTx while fn runs may be lost on rollback.
func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context, rs backup.RecordStore) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	batches, logs, settings := slices.Clone(m.batches), slices.Clone(m.logs), m.settings.Clone()
	m.mu.RUnlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.batches, m.logs, m.settings = batches, logs, settings
		m.mu.Unlock()
		return err
	}
	return nil
}

func indexByID[T interface{ ID() string }](xs []T, id string) int {
	return slices.IndexFunc(xs, func(x T) bool { return x.ID() == id })
}

func upsert[T interface{ ID() string }](xs []T, v T) []T {
	if i := indexByID(xs, v.ID()); i >= 0 {
		xs[i] = v
		return xs
	}
	return append(xs, v)
}
