package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/growkeeper/growkeeper/internal/cryptox"
	"github.com/growkeeper/growkeeper/internal/logging"
	"github.com/growkeeper/growkeeper/internal/models"
)

var fixedNow = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

func fastCodec() cryptox.Codec {
	return cryptox.NewCodec(cryptox.PBKDF2{Iterations: 1})
}

// fakeStore keeps records in memory and can fail on the n-th log write.
type fakeStore struct {
	batches  []models.Batch
	logs     []models.GrowLog
	settings models.Settings

	failOnLog int
	logWrites int
	listErr   error
	writes    int
	calls     []string
}

func (f *fakeStore) ListBatches(context.Context) ([]models.Batch, error) {
	return slices.Clone(f.batches), f.listErr
}

func (f *fakeStore) ListLogs(context.Context) ([]models.GrowLog, error) {
	return slices.Clone(f.logs), nil
}

func (f *fakeStore) GetSettings(context.Context) (models.Settings, error) {
	return f.settings.OrDefault().Clone(), nil
}

func (f *fakeStore) UpsertBatch(_ context.Context, b models.Batch) error {
	f.writes++
	f.calls = append(f.calls, "batch:"+b.ID())
	i := slices.IndexFunc(f.batches, func(x models.Batch) bool { return x.ID() == b.ID() })
	if i >= 0 {
		f.batches[i] = b
	} else {
		f.batches = append(f.batches, b)
	}
	return nil
}

func (f *fakeStore) UpsertLog(_ context.Context, l models.GrowLog) error {
	f.writes++
	f.logWrites++
	f.calls = append(f.calls, "log:"+l.ID())
	if f.failOnLog > 0 && f.logWrites >= f.failOnLog {
		return errors.New("disk full")
	}
	i := slices.IndexFunc(f.logs, func(x models.GrowLog) bool { return x.ID() == l.ID() })
	if i >= 0 {
		f.logs[i] = l
	} else {
		f.logs = append(f.logs, l)
	}
	return nil
}

func (f *fakeStore) ReplaceSettings(_ context.Context, s models.Settings) error {
	f.writes++
	f.calls = append(f.calls, "settings")
	f.settings = s.Clone()
	return nil
}

// txStore adds all-or-nothing semantics on top of fakeStore.
type txStore struct {
	*fakeStore
}

func (t txStore) WithinTx(ctx context.Context, fn func(context.Context, RecordStore) error) error {
	batches, logs, settings := slices.Clone(t.batches), slices.Clone(t.logs), t.settings.Clone()
	if err := fn(ctx, t.fakeStore); err != nil {
		t.batches, t.logs, t.settings = batches, logs, settings
		return err
	}
	return nil
}

type memSink struct {
	got []Artifact
	err error
}

func (m *memSink) Deliver(_ context.Context, a Artifact) error {
	if m.err != nil {
		return m.err
	}
	m.got = append(m.got, a)
	return nil
}

func mustBatch(t *testing.T, id, name string) models.Batch {
	t.Helper()
	b, err := models.NewBatch(id, models.BatchInfo{Name: name, Stage: "veg", StartedAt: fixedNow})
	require.NoError(t, err)
	return b
}

func mustLog(t *testing.T, id, batchID, kind string) models.GrowLog {
	t.Helper()
	l, err := models.NewGrowLog(id, models.LogEntry{BatchID: batchID, Kind: kind, RecordedAt: fixedNow})
	require.NoError(t, err)
	return l
}

func seededStore(t *testing.T) *fakeStore {
	t.Helper()
	return &fakeStore{
		batches: []models.Batch{
			mustBatch(t, "blue-pheno", "Blue"),
			mustBatch(t, "green-pheno", "Green"),
		},
		logs: []models.GrowLog{
			mustLog(t, "log-1", "blue-pheno", "watering"),
			mustLog(t, "log-2", "green-pheno", "feeding"),
			mustLog(t, "log-3", "blue-pheno", "topping"),
		},
		settings: models.Settings{"environmentType": json.RawMessage(`"Indoor"`)},
	}
}

func ids[T interface{ ID() string }](xs []T) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		out = append(out, x.ID())
	}
	return out
}

func exportFrom(t *testing.T, src RecordStore, password string) []byte {
	t.Helper()
	a, err := New(src, fastCodec(), WithClock(func() time.Time { return fixedNow })).
		Export(context.Background(), password)
	require.NoError(t, err)
	return a.Data
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "cultivator-backup-2024-03-01.ccbak", FileName(fixedNow))
}

func TestExport_ArtifactAndPayload(t *testing.T) {
	src := seededStore(t)
	svc := New(src, fastCodec(), WithClock(func() time.Time { return fixedNow }))

	a, err := svc.Export(context.Background(), "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "cultivator-backup-2024-03-01.ccbak", a.Name)
	assert.Equal(t, "application/octet-stream", a.MIMEType)

	var p models.Payload
	require.NoError(t, fastCodec().Decrypt(a.Data, "correct-horse", &p))
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, fixedNow.UnixMilli(), p.Timestamp)
	assert.Equal(t, []string{"blue-pheno", "green-pheno"}, ids(p.Batches))
	assert.Equal(t, []string{"log-1", "log-2", "log-3"}, ids(p.Logs))
	assert.Equal(t, "Indoor", p.Settings.EnvironmentType())
}

func TestExport_EmptyStoreHasArraysAndDefaults(t *testing.T) {
	data := exportFrom(t, &fakeStore{}, "pw")

	var raw map[string]json.RawMessage
	require.NoError(t, fastCodec().Decrypt(data, "pw", &raw))
	assert.JSONEq(t, `[]`, string(raw["batches"]))
	assert.JSONEq(t, `[]`, string(raw["logs"]))
	assert.JSONEq(t, `{"environmentType":"Indoor"}`, string(raw["settings"]))
}

func TestCreateBackup_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	sink := FileSink{Dir: dir}
	svc := New(seededStore(t), fastCodec(),
		WithSink(sink),
		WithClock(func() time.Time { return fixedNow }),
	)

	name, err := svc.CreateBackup(context.Background(), "correct-horse")
	require.NoError(t, err)
	require.Equal(t, FileName(fixedNow), name)

	path := sink.Path(name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Greater(t, len(data), cryptox.Overhead)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	dst := &fakeStore{}
	ok, err := New(dst, fastCodec()).RestoreFile(context.Background(), path, "correct-horse")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"blue-pheno", "green-pheno"}, ids(dst.batches))
}

func TestCreateBackup_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no sink", func(t *testing.T) {
		name, err := New(seededStore(t), fastCodec()).CreateBackup(ctx, "pw")
		require.ErrorIs(t, err, ErrBackupFailed)
		require.ErrorIs(t, err, ErrNoSink)
		assert.Empty(t, name)
	})

	t.Run("store read error", func(t *testing.T) {
		src := seededStore(t)
		src.listErr = errors.New("locked")
		sink := &memSink{}
		_, err := New(src, fastCodec(), WithSink(sink)).CreateBackup(ctx, "pw")
		require.ErrorIs(t, err, ErrBackupFailed)
		assert.Empty(t, sink.got)
	})

	t.Run("no randomness", func(t *testing.T) {
		codec := fastCodec()
		codec.Rand = bytes.NewReader(nil)
		sink := &memSink{}
		_, err := New(seededStore(t), codec, WithSink(sink)).CreateBackup(ctx, "pw")
		require.ErrorIs(t, err, ErrBackupFailed)
		require.ErrorIs(t, err, cryptox.ErrEnvironmentUnavailable)
		assert.Empty(t, sink.got, "nothing may be delivered when encryption fails")
	})

	t.Run("sink error", func(t *testing.T) {
		sink := &memSink{err: errors.New("read-only fs")}
		name, err := New(seededStore(t), fastCodec(), WithSink(sink)).CreateBackup(ctx, "pw")
		require.ErrorIs(t, err, ErrBackupFailed)
		require.ErrorContains(t, err, "read-only fs")
		assert.Empty(t, name)
	})
}

func TestRestore_EndToEnd(t *testing.T) {
	src := seededStore(t)
	sink := &memSink{}
	name, err := New(src, fastCodec(), WithSink(sink)).CreateBackup(context.Background(), "correct-horse")
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	require.Equal(t, sink.got[0].Name, name)

	dst := &fakeStore{}
	ok, err := New(dst, fastCodec()).RestoreFromBackup(context.Background(), sink.got[0].Data, "correct-horse")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ids(src.batches), ids(dst.batches))
	assert.Equal(t, ids(src.logs), ids(dst.logs))
	for i := range src.batches {
		assert.JSONEq(t, string(src.batches[i].Raw()), string(dst.batches[i].Raw()))
	}
	for i := range src.logs {
		assert.JSONEq(t, string(src.logs[i].Raw()), string(dst.logs[i].Raw()))
	}
	assert.Equal(t, models.Settings{"environmentType": json.RawMessage(`"Indoor"`)}, dst.settings)
}

func TestRestore_WrongPasswordLeavesStoreUntouched(t *testing.T) {
	data := exportFrom(t, seededStore(t), "correct-horse")

	var logBuf bytes.Buffer
	l, err := logging.New(&logBuf, "debug")
	require.NoError(t, err)

	dst := &fakeStore{}
	ok, err := New(dst, fastCodec(), WithLogger(l)).RestoreFromBackup(context.Background(), data, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, dst.writes)
	assert.Contains(t, logBuf.String(), "restore rejected")
}

func TestRestore_CorruptContainer(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")

	for name, blob := range map[string][]byte{
		"empty":     nil,
		"truncated": data[:cryptox.Overhead-1],
		"flipped":   func() []byte { b := bytes.Clone(data); b[len(b)/2] ^= 0x01; return b }(),
	} {
		t.Run(name, func(t *testing.T) {
			dst := &fakeStore{}
			ok, err := New(dst, fastCodec()).RestoreFromBackup(context.Background(), blob, "pw")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Zero(t, dst.writes)
		})
	}
}

func TestRestore_InvalidFormat(t *testing.T) {
	record := map[string]any{"id": "a"}
	tests := map[string]any{
		"not an object":       []int{1},
		"missing version":     map[string]any{"batches": []any{}},
		"string version":      map[string]any{"version": "1", "batches": []any{}},
		"null version":        map[string]any{"version": nil, "batches": []any{}},
		"future version":      map[string]any{"version": 2, "batches": []any{}},
		"zero version":        map[string]any{"version": 0, "batches": []any{}},
		"fractional version":  map[string]any{"version": 1.5, "batches": []any{}},
		"missing batches":     map[string]any{"version": 1},
		"null batches":        map[string]any{"version": 1, "batches": nil},
		"object batches":      map[string]any{"version": 1, "batches": map[string]any{}},
		"batch without id":    map[string]any{"version": 1, "batches": []any{map[string]any{"name": "x"}}},
		"batch with int id":   map[string]any{"version": 1, "batches": []any{map[string]any{"id": 7}}},
		"batch with ID only":  map[string]any{"version": 1, "batches": []any{map[string]any{"ID": "a"}}},
		"batch not object":    map[string]any{"version": 1, "batches": []any{"a"}},
		"duplicate batch ids": map[string]any{"version": 1, "batches": []any{record, record}},
		"duplicate log ids":   map[string]any{"version": 1, "batches": []any{}, "logs": []any{record, record}},
		"logs not array":      map[string]any{"version": 1, "batches": []any{}, "logs": "x"},
		"settings not object": map[string]any{"version": 1, "batches": []any{}, "settings": []any{}},
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := fastCodec().Encrypt(payload, "pw")
			require.NoError(t, err)

			var logBuf bytes.Buffer
			l, err := logging.New(&logBuf, "info")
			require.NoError(t, err)

			dst := &fakeStore{}
			ok, err := New(dst, fastCodec(), WithLogger(l)).RestoreFromBackup(context.Background(), data, "pw")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Zero(t, dst.writes)
			assert.Contains(t, logBuf.String(), ErrInvalidBackupFormat.Error())
		})
	}
}

func TestRestore_MinimalPayloadDefaults(t *testing.T) {
	for name, payload := range map[string]string{
		"no logs no settings": `{"version":1,"batches":[{"id":"a"}]}`,
		"null settings":       `{"version":1,"batches":[{"id":"a"}],"logs":null,"settings":null}`,
		"odd timestamp":       `{"version":1,"timestamp":"yesterday","batches":[{"id":"a"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := fastCodec().Encrypt(json.RawMessage(payload), "pw")
			require.NoError(t, err)

			dst := &fakeStore{}
			ok, err := New(dst, fastCodec()).RestoreFromBackup(context.Background(), data, "pw")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"a"}, ids(dst.batches))
			assert.Empty(t, dst.logs)
			assert.Equal(t, models.DefaultSettings(), dst.settings)
		})
	}
}

func TestRestore_IsIdempotent(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")
	dst := &fakeStore{}
	svc := New(dst, fastCodec())

	for range 2 {
		ok, err := svc.RestoreFromBackup(context.Background(), data, "pw")
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Len(t, dst.batches, 2)
	assert.Len(t, dst.logs, 3)
}

func TestRestore_OverwritesExistingByID(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")
	dst := &fakeStore{batches: []models.Batch{mustBatch(t, "blue-pheno", "stale"), mustBatch(t, "local-only", "keep")}}

	ok, err := New(dst, fastCodec()).RestoreFromBackup(context.Background(), data, "pw")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"blue-pheno", "local-only", "green-pheno"}, ids(dst.batches))
	info, err := dst.batches[0].Info()
	require.NoError(t, err)
	assert.Equal(t, "Blue", info.Name)
}

func TestRestore_PartialReplayWithoutTransaction(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")
	dst := &fakeStore{failOnLog: 2}

	ok, err := New(dst, fastCodec()).RestoreFromBackup(context.Background(), data, "pw")
	require.ErrorIs(t, err, ErrPartialReplay)
	require.ErrorContains(t, err, "disk full")
	assert.False(t, ok)

	// earlier writes stay, settings are never reached
	assert.Len(t, dst.batches, 2)
	assert.Equal(t, []string{"log-1"}, ids(dst.logs))
	assert.Nil(t, dst.settings)
	assert.Equal(t, []string{"batch:blue-pheno", "batch:green-pheno", "log:log-1", "log:log-2"}, dst.calls)
}

func TestRestore_ReplayOrder(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")
	dst := &fakeStore{}

	ok, err := New(dst, fastCodec()).RestoreFromBackup(context.Background(), data, "pw")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{
		"batch:blue-pheno",
		"batch:green-pheno",
		"log:log-1",
		"log:log-2",
		"log:log-3",
		"settings",
	}, dst.calls)
}

func TestRestore_TransactionRollsBack(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")
	inner := &fakeStore{batches: []models.Batch{mustBatch(t, "existing", "x")}, failOnLog: 2}

	ok, err := New(txStore{inner}, fastCodec()).RestoreFromBackup(context.Background(), data, "pw")
	require.ErrorIs(t, err, ErrPartialReplay)
	assert.False(t, ok)

	assert.Equal(t, []string{"existing"}, ids(inner.batches))
	assert.Empty(t, inner.logs)
	assert.Nil(t, inner.settings)
}

func TestRestore_EnvironmentUnavailable(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")

	ok, err := New(&fakeStore{}, cryptox.Codec{}).RestoreFromBackup(context.Background(), data, "pw")
	require.ErrorIs(t, err, cryptox.ErrEnvironmentUnavailable)
	assert.False(t, ok)
}

func TestRestore_AttemptLimiter(t *testing.T) {
	data := exportFrom(t, seededStore(t), "pw")
	svc := New(&fakeStore{}, fastCodec(), WithAttemptLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))

	ok, err := svc.RestoreFromBackup(context.Background(), data, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err = svc.RestoreFromBackup(ctx, data, "pw")
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestRestoreFile_Missing(t *testing.T) {
	ok, err := New(&fakeStore{}, fastCodec()).RestoreFile(context.Background(), filepath.Join(t.TempDir(), "nope.ccbak"), "pw")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, ok)
}

func TestFileSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := FileSink{Dir: t.TempDir()}.Deliver(ctx, Artifact{Name: "x.ccbak", Data: []byte("x")})
	require.ErrorIs(t, err, context.Canceled)
}
