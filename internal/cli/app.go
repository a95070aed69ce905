package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"

	"github.com/growkeeper/growkeeper/internal/backup"
	"github.com/growkeeper/growkeeper/internal/logging"
	"github.com/growkeeper/growkeeper/internal/models"
)

// Store is the record store the shell edits.
type Store interface {
	backup.RecordStore
	GetBatch(ctx context.Context, id string) (models.Batch, error)
	LogsOfBatch(ctx context.Context, batchID string) ([]models.GrowLog, error)
	DeleteBatch(ctx context.Context, id string) error
	DeleteLog(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}

// Backups is the part of backup.Service the shell drives.
type Backups interface {
	CreateBackup(ctx context.Context, password string) (string, error)
	RestoreFile(ctx context.Context, path, password string) (bool, error)
}

type App struct {
	store   Store
	backups Backups
	sink    backup.FileSink
	log     logging.Logger

	in  *bufio.Reader
	out io.Writer
	ui  *ui

	now   func() time.Time
	newID func() string
	busy  func(msg string) (stop func())

	status string
}

type Option func(*App)

// WithIO replaces stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithBackupDir tells the shell where backups land, for display. It must be
// the directory of the backup service's FileSink.
func WithBackupDir(dir string) Option {
	return func(a *App) { a.sink = backup.FileSink{Dir: dir} }
}

// WithClock sets the clock used to stamp new batches and logs.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func WithIDs(newID func() string) Option {
	return func(a *App) { a.newID = newID }
}

// WithStatus sets the text shown in the prompt.
func WithStatus(s string) Option {
	return func(a *App) { a.status = s }
}

func NewApp(store Store, backups Backups, opts ...Option) *App {
	a := &App{
		store:   store,
		backups: backups,
		log:     logging.Nop{},
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	a.ui = newUI(a.out)
	if a.busy == nil {
		a.busy = spin(a.out)
	}
	return a
}

// Run prints a greeting and serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) {
	a.ui.Info("Welcome to growkeeper (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.status }, a.in, a.ui)
}

// spin shows a spinner on w until the returned func is called. The spinner
// library stays silent when stdout is not a terminal.
func spin(w io.Writer) func(msg string) func() {
	return func(msg string) func() {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		s.Suffix = " " + msg
		s.Start()
		return s.Stop
	}
}
