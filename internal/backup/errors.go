package backup

import "errors"

var (
	// ErrInvalidBackupFormat marks a payload that decrypted fine but is not a
	// usable backup: missing or unsupported version, missing batches, bad
	// records, duplicate ids.
	ErrInvalidBackupFormat = errors.New("invalid backup format")

	// ErrPartialReplay marks a store failure while replaying a decrypted backup.
	ErrPartialReplay = errors.New("restore replay failed")

	ErrBackupFailed = errors.New("backup failed")

	ErrNoSink = errors.New("no backup destination configured")
)
