package config

import (
	"flag"
	"io"

	"github.com/growkeeper/growkeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags this package owns. Other flags in
// args are ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("growkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.BackupDir, "o", cfg.BackupDir, "directory backups are written to")
	fs.StringVar(&cfg.KDF, "k", cfg.KDF, "key derivation: pbkdf2 or argon2id")
	fs.IntVar(&cfg.PBKDF2Iterations, "n", cfg.PBKDF2Iterations, "PBKDF2 iterations")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	return fs.Parse(flagx.FilterArgs(args, "d", "o", "k", "n", "l"))
}
