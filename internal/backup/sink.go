package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/growkeeper/growkeeper/internal/filex"
)

const (
	FileExtension = ".ccbak"
	MIMEType      = "application/octet-stream"
	filePrefix    = "cultivator-backup-"
)

// Artifact is a finished backup ready for delivery.
type Artifact struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Sink delivers a backup artifact to the user.
type Sink interface {
	Deliver(ctx context.Context, a Artifact) error
}

// FileName returns the backup file name for the given day,
// e.g. cultivator-backup-2024-03-01.ccbak.
func FileName(t time.Time) string {
	return filePrefix + t.Format(time.DateOnly) + FileExtension
}

// FileSink writes artifacts into Dir. Files are written atomically with
// owner-only permissions; an existing backup of the same day is replaced.
type FileSink struct {
	Dir string
}

// Path is where Deliver puts an artifact with the given name.
func (s FileSink) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

func (s FileSink) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := filex.EnsureDir(s.Dir)
	if err != nil {
		return fmt.Errorf("prepare backup dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(a.Name))
	if err := filex.WriteFileAtomic(path, a.Data, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}
