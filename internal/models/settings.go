package models

import (
	"encoding/json"
	"strings"

	"github.com/growkeeper/growkeeper/internal/common"
)

// SettingEnvironmentType names the grow environment (Indoor, Outdoor, Greenhouse).
const SettingEnvironmentType = "environmentType"

// Settings is the single app settings object. Values are kept as raw JSON.
type Settings map[string]json.RawMessage

// DefaultSettings is what a store without saved settings reports.
func DefaultSettings() Settings {
	return Settings{SettingEnvironmentType: json.RawMessage(`"Indoor"`)}
}

// OrDefault returns s, or DefaultSettings when s is nil.
func (s Settings) OrDefault() Settings {
	if s == nil {
		return DefaultSettings()
	}
	return s
}

// Clone returns a copy that shares no values with s.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Get decodes the named value into v. It reports false when the setting is absent.
func (s Settings) Get(name string, v any) (bool, error) {
	raw, ok := s[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// Set stores v under name.
func (s Settings) Set(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s[name] = b
	return nil
}

// EnvironmentType returns the configured environment or "" when unset.
func (s Settings) EnvironmentType() string {
	var v string
	if ok, err := s.Get(SettingEnvironmentType, &v); !ok || err != nil {
		return ""
	}
	return v
}

// ParseSetting parses "name=value". A value that is valid JSON (a number,
// true, a quoted string, an object) is stored as is; anything else is stored
// as a JSON string.
func ParseSetting(s string) (string, json.RawMessage, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, common.ErrorIncorrectMetadata
	}
	value = strings.TrimSpace(value)

	if json.Valid([]byte(value)) {
		return name, json.RawMessage(value), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", nil, err
	}
	return name, b, nil
}
