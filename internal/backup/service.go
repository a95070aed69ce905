package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/growkeeper/growkeeper/internal/cryptox"
	"github.com/growkeeper/growkeeper/internal/logging"
	"github.com/growkeeper/growkeeper/internal/models"
)

// Service is the backup orchestrator. It is safe for concurrent use as long
// as the store is.
type Service struct {
	store   RecordStore
	codec   cryptox.Codec
	sink    Sink
	log     logging.Logger
	now     func() time.Time
	limiter *rate.Limiter
}

type Option func(*Service)

func WithSink(s Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

func WithLogger(l logging.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithClock overrides time.Now for backup timestamps and file names.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithAttemptLimiter makes every restore attempt wait for a token from l,
// slowing down password guessing through the restore entry point.
func WithAttemptLimiter(l *rate.Limiter) Option {
	return func(svc *Service) { svc.limiter = l }
}

func New(store RecordStore, codec cryptox.Codec, opts ...Option) *Service {
	s := &Service{
		store: store,
		codec: codec,
		log:   logging.Nop{},
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "backup")
	return s
}

// Export snapshots the store and encrypts it under password. Nothing is
// delivered; see CreateBackup.
func (s *Service) Export(ctx context.Context, password string) (*Artifact, error) {
	now := s.now()

	p, err := s.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}

	data, err := s.codec.Encrypt(p, password)
	if err != nil {
		return nil, fmt.Errorf("encrypt backup: %w", err)
	}

	return &Artifact{
		Name:     FileName(now),
		MIMEType: MIMEType,
		Data:     data,
	}, nil
}

func (s *Service) snapshot(ctx context.Context, now time.Time) (models.Payload, error) {
	var p models.Payload

	read := func(ctx context.Context, st RecordStore) error {
		batches, err := st.ListBatches(ctx)
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		logs, err := st.ListLogs(ctx)
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		settings, err := st.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		p = models.NewPayload(now, batches, logs, settings)
		return nil
	}

	if tx, ok := s.store.(Transactor); ok {
		return p, tx.WithinTx(ctx, read)
	}
	return p, read(ctx, s.store)
}

// CreateBackup exports the store and hands the container to the sink. It
// returns the name of the delivered artifact. Every failure matches
// ErrBackupFailed; the sink sees nothing unless encryption succeeded.
func (s *Service) CreateBackup(ctx context.Context, password string) (string, error) {
	if s.sink == nil {
		return "", fmt.Errorf("%w: %w", ErrBackupFailed, ErrNoSink)
	}

	a, err := s.Export(ctx, password)
	if err != nil {
		s.log.Error(ctx, "backup failed", "err", err)
		return "", fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}

	if err := s.sink.Deliver(ctx, *a); err != nil {
		s.log.Error(ctx, "backup delivery failed", "file", a.Name, "err", err)
		return "", fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}

	s.log.Info(ctx, "backup created", "file", a.Name, "bytes", len(a.Data))
	return a.Name, nil
}

// RestoreFromBackup decrypts data and replays it into the store.
//
// It returns false, nil when the password is wrong, the container is damaged
// or the payload is not a valid backup; the store is untouched in those
// cases. Environment failures and store write failures are returned as
// errors, the latter matching ErrPartialReplay.
func (s *Service) RestoreFromBackup(ctx context.Context, data []byte, password string) (bool, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("restore attempt throttled: %w", err)
		}
	}

	var plain json.RawMessage
	if err := s.codec.Decrypt(data, password, &plain); err != nil {
		if errors.Is(err, cryptox.ErrInvalidPasswordOrCorruptFile) {
			s.log.Warn(ctx, "restore rejected", "reason", "invalid password or corrupt file")
			return false, nil
		}
		s.log.Error(ctx, "restore failed", "err", err)
		return false, err
	}

	p, err := decodePayload(plain)
	if err != nil {
		s.log.Warn(ctx, "restore rejected", "reason", err.Error())
		return false, nil
	}

	if err := s.replay(ctx, p); err != nil {
		s.log.Error(ctx, "restore replay failed", "err", err)
		return false, err
	}

	s.log.Info(ctx, "backup restored",
		"created", p.CreatedAt().UTC().Format(time.RFC3339),
		"batches", len(p.Batches),
		"logs", len(p.Logs),
	)
	return true, nil
}

// RestoreFile reads a backup file and restores it.
func (s *Service) RestoreFile(ctx context.Context, path, password string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read backup file: %w", err)
	}
	return s.RestoreFromBackup(ctx, data, password)
}

func (s *Service) replay(ctx context.Context, p models.Payload) error {
	if tx, ok := s.store.(Transactor); ok {
		return tx.WithinTx(ctx, func(ctx context.Context, st RecordStore) error {
			return replayInto(ctx, st, p)
		})
	}
	return replayInto(ctx, s.store, p)
}

// replayInto writes batches, then logs, then settings.
func replayInto(ctx context.Context, st RecordStore, p models.Payload) error {
	for _, b := range p.Batches {
		if err := st.UpsertBatch(ctx, b); err != nil {
			return fmt.Errorf("%w: batch %q: %w", ErrPartialReplay, b.ID(), err)
		}
	}
	for _, l := range p.Logs {
		if err := st.UpsertLog(ctx, l); err != nil {
			return fmt.Errorf("%w: log %q: %w", ErrPartialReplay, l.ID(), err)
		}
	}
	if err := st.ReplaceSettings(ctx, p.Settings.OrDefault()); err != nil {
		return fmt.Errorf("%w: settings: %w", ErrPartialReplay, err)
	}
	return nil
}
