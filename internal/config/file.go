package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/growkeeper/growkeeper/internal/flagx"
	"github.com/growkeeper/growkeeper/internal/timex"
)

// FileConfig is the on-disk config schema. Pointer fields tell "absent"
// apart from zero values so a file only overrides what it names.
type FileConfig struct {
	Database               *string         `json:"database" yaml:"database"`
	BackupDir              *string         `json:"backup_dir" yaml:"backup_dir"`
	KDF                    *string         `json:"kdf" yaml:"kdf"`
	PBKDF2Iterations       *int            `json:"pbkdf2_iterations" yaml:"pbkdf2_iterations"`
	Argon2                 *Argon2Config   `json:"argon2" yaml:"argon2"`
	LogLevel               *string         `json:"log_level" yaml:"log_level"`
	RestoreAttemptInterval *timex.Duration `json:"restore_attempt_interval" yaml:"restore_attempt_interval"`
}

type Argon2Config struct {
	Time      *uint32 `json:"time" yaml:"time"`
	MemoryKiB *uint32 `json:"memory_kib" yaml:"memory_kib"`
	Threads   *uint8  `json:"threads" yaml:"threads"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	set(&cfg.DatabasePath, fc.Database)
	set(&cfg.BackupDir, fc.BackupDir)
	set(&cfg.KDF, fc.KDF)
	set(&cfg.PBKDF2Iterations, fc.PBKDF2Iterations)
	set(&cfg.LogLevel, fc.LogLevel)
	if fc.Argon2 != nil {
		set(&cfg.Argon2Time, fc.Argon2.Time)
		set(&cfg.Argon2MemoryKiB, fc.Argon2.MemoryKiB)
		set(&cfg.Argon2Threads, fc.Argon2.Threads)
	}
	if fc.RestoreAttemptInterval != nil {
		cfg.RestoreAttemptInterval = fc.RestoreAttemptInterval.Duration
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
