package config

import (
	"fmt"
	"time"

	"github.com/growkeeper/growkeeper/internal/common"
	"github.com/growkeeper/growkeeper/internal/cryptox"
	"github.com/growkeeper/growkeeper/internal/logging"
)

const (
	KDFPBKDF2   = "pbkdf2"
	KDFArgon2id = "argon2id"

	// MinPBKDF2Iterations is the lowest iteration count Validate accepts.
	MinPBKDF2Iterations = 100_000
)

// Config holds runtime settings for the CLI.
type Config struct {
	DatabasePath string
	BackupDir    string

	KDF              string
	PBKDF2Iterations int
	Argon2Time       uint32
	Argon2MemoryKiB  uint32
	Argon2Threads    uint8

	LogLevel string

	// RestoreAttemptInterval is the minimum spacing between restore
	// attempts. Zero disables throttling.
	RestoreAttemptInterval time.Duration
}

func (c *Config) LoadDefaults() {
	argon := cryptox.DefaultArgon2id()

	c.DatabasePath = common.AppName + ".db"
	c.BackupDir = "backups"
	c.KDF = KDFPBKDF2
	c.PBKDF2Iterations = cryptox.DefaultPBKDF2Iterations
	c.Argon2Time = argon.Time
	c.Argon2MemoryKiB = argon.MemoryKiB
	c.Argon2Threads = argon.Threads
	c.LogLevel = "info"
	c.RestoreAttemptInterval = 2 * time.Second
}

// LoadConfig applies defaults, environment, config file and flags (args
// without the program name), then validates the result.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}

	switch c.KDF {
	case KDFPBKDF2:
		if c.PBKDF2Iterations < MinPBKDF2Iterations {
			return fmt.Errorf("pbkdf2 iterations %d below minimum %d", c.PBKDF2Iterations, MinPBKDF2Iterations)
		}
	case KDFArgon2id:
		if err := c.argon2id().Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kdf %q (want %s or %s)", c.KDF, KDFPBKDF2, KDFArgon2id)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RestoreAttemptInterval < 0 {
		return fmt.Errorf("restore attempt interval must not be negative")
	}
	return nil
}

// NewKDF builds the key derivation selected by the config.
func (c *Config) NewKDF() (cryptox.KDF, error) {
	switch c.KDF {
	case KDFPBKDF2:
		return cryptox.PBKDF2{Iterations: c.PBKDF2Iterations}, nil
	case KDFArgon2id:
		return c.argon2id(), nil
	}
	return nil, fmt.Errorf("unknown kdf %q", c.KDF)
}

func (c *Config) argon2id() cryptox.Argon2id {
	return cryptox.Argon2id{Time: c.Argon2Time, MemoryKiB: c.Argon2MemoryKiB, Threads: c.Argon2Threads}
}
