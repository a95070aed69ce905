// Package cli implements the interactive growkeeper shell.
//
// The shell reads one command per line, dispatches it to App and prints the
// outcome. Passwords are read without echo when stdin is a terminal and are
// wiped after use. Key derivation takes a noticeable moment, so backup and
// restore show a spinner while they run.
//
// Commands
//
//	help                      show available commands
//	batches                   list batches
//	addbatch                  add a batch (interactive)
//	logs [batch-id]           list grow logs, optionally for one batch
//	addlog [batch-id]         add a grow log (interactive)
//	delete batch|log <id>     remove one record
//	settings                  show settings
//	set name=value            change one setting
//	backup                    write an encrypted backup file
//	restore [file]            restore from a backup file
//	wipe                      delete all local records
//	exit | quit               leave
package cli
