// Package backup creates and restores encrypted backups of the grow data.
//
// A backup is the whole dataset (batches, grow logs, settings) serialized as
// a versioned JSON payload and sealed by cryptox.Codec into a .ccbak
// container. Restoring reverses that and upserts every record back into the
// store, so replaying the same file twice leaves the same state.
//
// RestoreFromBackup keeps the two-valued contract: false, nil when the
// password is wrong, the file is damaged or the payload is not a backup;
// an error only for environment or store failures. The reason for a false
// result is logged, never returned.
//
// When the store implements Transactor, replay runs inside one transaction
// and a failing write leaves the store untouched. Otherwise records written
// before the failure stay written and the error matches ErrPartialReplay.
package backup
