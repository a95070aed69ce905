// Package models defines the cultivation records that make up a backup:
// batches, grow logs and the settings object, plus the payload that wraps
// them.
//
// Batches and logs are opaque JSON objects. Only the "id" member is
// interpreted; every other member is carried byte for byte so records
// written by newer app versions survive a backup/restore cycle unchanged.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrRecordNotObject = errors.New("record must be a JSON object")
	ErrRecordNoID      = errors.New("record must have a non-empty string id")
)

// Record is an opaque JSON object identified by its "id" member.
type Record struct {
	id  string
	raw json.RawMessage
}

// NewRecord builds a record from any value that marshals to a JSON object,
// setting (or overwriting) its "id" member.
func NewRecord(id string, fields any) (Record, error) {
	if id == "" {
		return Record{}, ErrRecordNoID
	}

	obj := map[string]json.RawMessage{}
	if fields != nil {
		b, err := json.Marshal(fields)
		if err != nil {
			return Record{}, err
		}
		if !isObject(b) {
			return Record{}, ErrRecordNotObject
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return Record{}, err
		}
		if obj == nil {
			obj = map[string]json.RawMessage{}
		}
	}

	idJSON, err := json.Marshal(id)
	if err != nil {
		return Record{}, err
	}
	obj["id"] = idJSON

	raw, err := json.Marshal(obj)
	if err != nil {
		return Record{}, err
	}
	return Record{id: id, raw: raw}, nil
}

// ParseRecord decodes a stored JSON object into a Record.
func ParseRecord(b []byte) (Record, error) {
	var r Record
	if err := r.UnmarshalJSON(b); err != nil {
		return Record{}, err
	}
	return r, nil
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Raw returns a copy of the record's JSON encoding.
func (r Record) Raw() json.RawMessage {
	if len(r.raw) == 0 {
		b, _ := r.MarshalJSON()
		return b
	}
	return bytes.Clone(r.raw)
}

// Decode unmarshals the record into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.Raw(), v)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return json.Marshal(struct {
			ID string `json:"id"`
		}{ID: r.id})
	}
	return r.raw, nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if !isObject(b) {
		return ErrRecordNotObject
	}

	// A map keeps member names exact; struct tags would also match "ID" or "Id".
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	var id string
	rawID, ok := members["id"]
	if !ok || json.Unmarshal(rawID, &id) != nil || id == "" {
		return ErrRecordNoID
	}

	r.id = id
	r.raw = bytes.Clone(b)
	return nil
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
