package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/growkeeper/growkeeper/internal/backup"
	"github.com/growkeeper/growkeeper/internal/buildinfo"
	"github.com/growkeeper/growkeeper/internal/cli"
	"github.com/growkeeper/growkeeper/internal/config"
	"github.com/growkeeper/growkeeper/internal/cryptox"
	"github.com/growkeeper/growkeeper/internal/logging"
	"github.com/growkeeper/growkeeper/internal/store"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "growkeeper:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	kdf, err := cfg.NewKDF()
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	defer st.Close()

	opts := []backup.Option{
		backup.WithSink(backup.FileSink{Dir: cfg.BackupDir}),
		backup.WithLogger(logger),
	}
	if cfg.RestoreAttemptInterval > 0 {
		opts = append(opts, backup.WithAttemptLimiter(rate.NewLimiter(rate.Every(cfg.RestoreAttemptInterval), 1)))
	}
	svc := backup.New(st, cryptox.NewCodec(kdf), opts...)

	logger.Debug(ctx, "starting", "db", cfg.DatabasePath, "backups", cfg.BackupDir, "kdf", kdf)

	app := cli.NewApp(st, svc,
		cli.WithLogger(logger),
		cli.WithBackupDir(cfg.BackupDir),
		cli.WithStatus(filepath.Base(cfg.DatabasePath)),
	)
	app.Run(ctx)
	return nil
}
