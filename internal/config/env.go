package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/growkeeper/growkeeper/internal/common"
)

// parseEnv loads dotenv (if it exists) into the process environment, then
// overlays every GROWKEEPER_* variable that is set.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	lookupString("DATABASE", &cfg.DatabasePath)
	lookupString("BACKUP_DIR", &cfg.BackupDir)
	lookupString("KDF", &cfg.KDF)
	lookupString("LOG_LEVEL", &cfg.LogLevel)

	if err := lookupInt("PBKDF2_ITERATIONS", &cfg.PBKDF2Iterations); err != nil {
		return err
	}
	if err := lookupUint("ARGON2_TIME", 32, func(v uint64) { cfg.Argon2Time = uint32(v) }); err != nil {
		return err
	}
	if err := lookupUint("ARGON2_MEMORY_KIB", 32, func(v uint64) { cfg.Argon2MemoryKiB = uint32(v) }); err != nil {
		return err
	}
	if err := lookupUint("ARGON2_THREADS", 8, func(v uint64) { cfg.Argon2Threads = uint8(v) }); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(common.EnvPrefix + "RESTORE_ATTEMPT_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sRESTORE_ATTEMPT_INTERVAL: %w", common.EnvPrefix, err)
		}
		cfg.RestoreAttemptInterval = d
	}
	return nil
}

func lookupString(name string, dst *string) {
	if v, ok := os.LookupEnv(common.EnvPrefix + name); ok {
		*dst = v
	}
}

func lookupInt(name string, dst *int) error {
	v, ok := os.LookupEnv(common.EnvPrefix + name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", common.EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

func lookupUint(name string, bits int, set func(uint64)) error {
	v, ok := os.LookupEnv(common.EnvPrefix + name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		return fmt.Errorf("%s%s: %w", common.EnvPrefix, name, err)
	}
	set(n)
	return nil
}
