package models

import "time"

// Batch is a cultivation batch (a group of plants grown together).
type Batch struct {
	Record
}

// GrowLog is a dated journal entry, usually pointing at a batch.
type GrowLog struct {
	Record
}

// BatchInfo is the typed view of the batch fields the CLI knows about.
// Unknown members of stored batches are ignored when decoding into it.
type BatchInfo struct {
	Name      string    `json:"name"`
	Strain    string    `json:"strain,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	Notes     string    `json:"notes,omitempty"`
}

// LogEntry is the typed view of a grow log.
type LogEntry struct {
	BatchID    string    `json:"batchId"`
	Kind       string    `json:"kind"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

func NewBatch(id string, info BatchInfo) (Batch, error) {
	r, err := NewRecord(id, info)
	if err != nil {
		return Batch{}, err
	}
	return Batch{r}, nil
}

func NewGrowLog(id string, entry LogEntry) (GrowLog, error) {
	r, err := NewRecord(id, entry)
	if err != nil {
		return GrowLog{}, err
	}
	return GrowLog{r}, nil
}

// Info decodes the known batch fields.
func (b Batch) Info() (BatchInfo, error) {
	var v BatchInfo
	return v, b.Decode(&v)
}

// Entry decodes the known log fields.
func (l GrowLog) Entry() (LogEntry, error) {
	var v LogEntry
	return v, l.Decode(&v)
}
