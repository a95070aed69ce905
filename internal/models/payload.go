package models

import (
	"fmt"
	"time"
)

// PayloadVersion is the payload format written by this build. Restores
// accept versions 1..PayloadVersion.
const PayloadVersion = 1

// Payload is the plaintext that gets encrypted into a backup container.
type Payload struct {
	Version   int       `json:"version"`
	Timestamp int64     `json:"timestamp"`
	Batches   []Batch   `json:"batches"`
	Logs      []GrowLog `json:"logs"`
	Settings  Settings  `json:"settings"`
}

// NewPayload snapshots the given records. Nil slices become empty arrays and
// nil settings become DefaultSettings so the JSON never carries null.
func NewPayload(now time.Time, batches []Batch, logs []GrowLog, settings Settings) Payload {
	if batches == nil {
		batches = []Batch{}
	}
	if logs == nil {
		logs = []GrowLog{}
	}
	return Payload{
		Version:   PayloadVersion,
		Timestamp: now.UnixMilli(),
		Batches:   batches,
		Logs:      logs,
		Settings:  settings.OrDefault(),
	}
}

// CreatedAt converts Timestamp back to a time.
func (p Payload) CreatedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// CheckUniqueIDs reports the first batch or log id that appears twice.
func (p Payload) CheckUniqueIDs() error {
	seen := make(map[string]struct{}, len(p.Batches))
	for _, b := range p.Batches {
		if _, dup := seen[b.ID()]; dup {
			return fmt.Errorf("duplicate batch id %q", b.ID())
		}
		seen[b.ID()] = struct{}{}
	}

	seen = make(map[string]struct{}, len(p.Logs))
	for _, l := range p.Logs {
		if _, dup := seen[l.ID()]; dup {
			return fmt.Errorf("duplicate log id %q", l.ID())
		}
		seen[l.ID()] = struct{}{}
	}
	return nil
}
