package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/growkeeper/growkeeper/internal/common"
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) Backup(ctx context.Context) error {
	pw, err := GetPassword(a.in, stdinFD(), "Backup password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if len(pw) == 0 {
		return errors.New("password must not be empty")
	}

	confirm, err := GetPassword(a.in, stdinFD(), "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		return errPasswordMismatch
	}

	stop := a.busy("Encrypting backup...")
	name, err := a.backups.CreateBackup(ctx, string(pw))
	stop()
	if err != nil {
		return err
	}

	a.ui.Success("Backup written to %s", a.sink.Path(name))
	a.ui.Hint("Keep the password safe. Without it the backup cannot be restored.")
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		var err error
		if path, err = GetSimpleText(a.in, "Backup file", a.out); err != nil {
			return err
		}
	}
	if path == "" {
		return errors.New("no backup file given")
	}

	ok, err := Confirm(a.in, "Records with the same ids will be overwritten. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}

	pw, err := GetPassword(a.in, stdinFD(), "Backup password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	stop := a.busy("Decrypting backup...")
	restored, err := a.backups.RestoreFile(ctx, path, string(pw))
	stop()
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if !restored {
		a.ui.Warn("Restore did not happen: wrong password, or the file is damaged or not a growkeeper backup.")
		a.ui.Hint("Nothing was changed. Try again with another password or file.")
		return nil
	}

	batches, err := a.store.ListBatches(ctx)
	if err != nil {
		return err
	}
	logs, err := a.store.ListLogs(ctx)
	if err != nil {
		return err
	}
	a.ui.Success("Backup restored. The store now holds %d batches and %d logs.", len(batches), len(logs))
	return nil
}

func (a *App) Wipe(ctx context.Context) error {
	answer, err := GetSimpleText(a.in, "This deletes every batch, log and setting. Type 'wipe' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "wipe" {
		return errAborted
	}

	if err := a.store.Reset(ctx); err != nil {
		return err
	}
	a.log.Info(ctx, "local records wiped")
	a.ui.Success("All local records deleted")
	return nil
}
