package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	Batches(ctx context.Context) error
	AddBatch(ctx context.Context) error
	Logs(ctx context.Context, args []string) error
	AddLog(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Settings(ctx context.Context) error
	Set(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
	Wipe(ctx context.Context) error
}

const helpText = `Available commands:
  batches | addbatch | logs [batch-id] | addlog [batch-id]
  delete batch|log <id> | settings | set name=value
  backup | restore [file] | wipe | exit`

// runREPL reads commands from in until EOF, exit or quit, or until ctx is
// done. Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, u *ui) {
	for {
		if ctx.Err() != nil {
			return
		}

		prompt := "gk"
		if s := statusFn(); s != "" {
			prompt += " (" + s + ")"
		}
		u.Prompt(prompt + "> ")

		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			u.Info("")
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			u.Info(helpText)
		case "batches":
			cmdErr = a.Batches(ctx)
		case "addbatch":
			cmdErr = a.AddBatch(ctx)
		case "logs":
			cmdErr = a.Logs(ctx, args)
		case "addlog":
			cmdErr = a.AddLog(ctx, args)
		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)
		case "settings":
			cmdErr = a.Settings(ctx)
		case "set":
			cmdErr = a.Set(ctx, args)
		case "backup":
			cmdErr = a.Backup(ctx)
		case "restore":
			cmdErr = a.Restore(ctx, args)
		case "wipe":
			cmdErr = a.Wipe(ctx)
		case "exit", "quit":
			u.Info("Bye!")
			return
		default:
			u.Warn("Unknown command: %s (type 'help')", cmd)
		}

		if cmdErr != nil {
			u.Error(cmdErr)
		}
		if err != nil {
			return
		}
	}
}
