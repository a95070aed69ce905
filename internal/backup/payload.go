package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/growkeeper/growkeeper/internal/models"
)

// decodePayload checks the decrypted JSON has the shape of a backup and
// converts it. Every error wraps ErrInvalidBackupFormat.
//
// Required: a numeric integral version in 1..models.PayloadVersion and a
// batches array. logs may be absent (no logs); settings may be absent or
// null (defaults). timestamp is informational and ignored when malformed.
func decodePayload(plain json.RawMessage) (models.Payload, error) {
	var fields map[string]json.RawMessage
	if !isJSON(plain, '{') || json.Unmarshal(plain, &fields) != nil {
		return models.Payload{}, formatErr("payload is not an object")
	}

	var p models.Payload

	raw, ok := fields["version"]
	if !ok {
		return p, formatErr("version is missing")
	}
	var version float64
	if err := json.Unmarshal(raw, &version); err != nil || !isJSON(raw, 0) {
		return p, formatErr("version is not a number")
	}
	if version != math.Trunc(version) || version < 1 || version > models.PayloadVersion {
		return p, formatErr("unsupported version %v", version)
	}
	p.Version = int(version)

	if raw, ok := fields["timestamp"]; ok {
		var ts float64
		if json.Unmarshal(raw, &ts) == nil {
			p.Timestamp = int64(ts)
		}
	}

	raw, ok = fields["batches"]
	if !ok || !isJSON(raw, '[') {
		return p, formatErr("batches is missing or not an array")
	}
	if err := json.Unmarshal(raw, &p.Batches); err != nil {
		return p, formatErr("batches: %v", err)
	}

	p.Logs = []models.GrowLog{}
	if raw, ok := fields["logs"]; ok && !isNull(raw) {
		if !isJSON(raw, '[') {
			return p, formatErr("logs is not an array")
		}
		if err := json.Unmarshal(raw, &p.Logs); err != nil {
			return p, formatErr("logs: %v", err)
		}
	}

	if raw, ok := fields["settings"]; ok && !isNull(raw) {
		if !isJSON(raw, '{') {
			return p, formatErr("settings is not an object")
		}
		if err := json.Unmarshal(raw, &p.Settings); err != nil {
			return p, formatErr("settings: %v", err)
		}
	}
	p.Settings = p.Settings.OrDefault()

	if err := p.CheckUniqueIDs(); err != nil {
		return p, formatErr("%v", err)
	}
	return p, nil
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBackupFormat, fmt.Sprintf(format, args...))
}

// isJSON reports whether raw starts with the given delimiter. A zero delim
// matches a JSON number.
func isJSON(raw json.RawMessage, delim byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	if delim == 0 {
		c := raw[0]
		return c == '-' || (c >= '0' && c <= '9')
	}
	return raw[0] == delim
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
