// Package config loads runtime configuration for the growkeeper CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then GROWKEEPER_* environment
//     variables. Variables already set in the environment win over .env.
//  3. A config file selected with -c or -config. Files ending in .yaml or
//     .yml are read as YAML, anything else as JSON. Only keys present in
//     the file are applied.
//  4. Command-line flags.
//
// Flags
//
//	-d string   SQLite database path
//	-o string   directory backups are written to
//	-k string   key derivation: pbkdf2 or argon2id
//	-n int      PBKDF2 iterations
//	-l string   log level: debug, info, warn, error
//
// Environment
//
//	GROWKEEPER_DATABASE                  GROWKEEPER_BACKUP_DIR
//	GROWKEEPER_KDF                       GROWKEEPER_PBKDF2_ITERATIONS
//	GROWKEEPER_ARGON2_TIME               GROWKEEPER_ARGON2_MEMORY_KIB
//	GROWKEEPER_ARGON2_THREADS            GROWKEEPER_LOG_LEVEL
//	GROWKEEPER_RESTORE_ATTEMPT_INTERVAL
//
// File schema (JSON shown; YAML uses the same keys). Durations accept "2s"
// or integer nanoseconds:
//
//	{
//	  "database": "growkeeper.db",
//	  "backup_dir": "backups",
//	  "kdf": "pbkdf2",
//	  "pbkdf2_iterations": 600000,
//	  "argon2": {"time": 3, "memory_kib": 65536, "threads": 2},
//	  "log_level": "info",
//	  "restore_attempt_interval": "2s"
//	}
//
// Backups are only readable with the same key derivation settings they were
// written with. The container does not record them.
package config
