package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growkeeper/growkeeper/internal/backup"
	"github.com/growkeeper/growkeeper/internal/cryptox"
	"github.com/growkeeper/growkeeper/internal/models"
)

var backupDay = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s testStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertBatch(ctx, mustBatch(t, "blue-pheno", "Blue")))
	require.NoError(t, s.UpsertBatch(ctx, mustBatch(t, "green-pheno", "Green")))
	require.NoError(t, s.UpsertLog(ctx, mustLog(t, "log-1", "blue-pheno", "watering")))
	require.NoError(t, s.UpsertLog(ctx, mustLog(t, "log-2", "green-pheno", "feeding")))
	require.NoError(t, s.UpsertLog(ctx, mustLog(t, "log-3", "blue-pheno", "defoliation")))
	require.NoError(t, s.ReplaceSettings(ctx, models.Settings{"environmentType": json.RawMessage(`"Indoor"`)}))
}

func backupFile(t *testing.T, codec cryptox.Codec, s testStore, password string) string {
	t.Helper()
	sink := backup.FileSink{Dir: t.TempDir()}
	svc := backup.New(s, codec,
		backup.WithSink(sink),
		backup.WithClock(func() time.Time { return backupDay }),
	)
	name, err := svc.CreateBackup(context.Background(), password)
	require.NoError(t, err)
	return sink.Path(name)
}

func assertSeeded(t *testing.T, s testStore) {
	t.Helper()
	ctx := context.Background()

	b, err := s.ListBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"blue-pheno", "green-pheno"}, batchIDs(b))

	l, err := s.ListLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"log-1", "log-2", "log-3"}, logIDs(l))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Settings{"environmentType": json.RawMessage(`"Indoor"`)}, settings)
}

func TestBackupRestore_EndToEnd(t *testing.T) {
	codec := cryptox.NewCodec(cryptox.PBKDF2{Iterations: 1})

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, s)
			path := backupFile(t, codec, s, "correct-horse")
			assert.Equal(t, "cultivator-backup-2024-03-01.ccbak", filepath.Base(path))

			require.NoError(t, s.Reset(ctx))

			svc := backup.New(s, codec)
			ok, err := svc.RestoreFile(ctx, path, "correct-horse")
			require.NoError(t, err)
			require.True(t, ok)
			assertSeeded(t, s)

			// a second restore of the same file changes nothing
			ok, err = svc.RestoreFile(ctx, path, "correct-horse")
			require.NoError(t, err)
			require.True(t, ok)
			assertSeeded(t, s)
		})
	}
}

func TestBackupRestore_WrongPassword(t *testing.T) {
	codec := cryptox.NewCodec(cryptox.PBKDF2{Iterations: 1})

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, s)
			path := backupFile(t, codec, s, "correct-horse")
			require.NoError(t, s.Reset(ctx))

			ok, err := backup.New(s, codec).RestoreFile(ctx, path, "wrong-password")
			require.NoError(t, err)
			assert.False(t, ok)

			b, err := s.ListBatches(ctx)
			require.NoError(t, err)
			assert.Empty(t, b, "store must not change on a rejected restore")
		})
	}
}

func TestBackupRestore_TransactionalReplay(t *testing.T) {
	codec := cryptox.NewCodec(cryptox.PBKDF2{Iterations: 1})
	ctx := context.Background()

	src := NewMemory()
	seed(t, src)
	path := backupFile(t, codec, src, "pw")

	dst := newSQLite(t)
	require.NoError(t, dst.UpsertBatch(ctx, mustBatch(t, "existing", "x")))
	// break the logs table so replay fails after the batches were written
	_, err := dst.db.Exec(`DROP TABLE logs`)
	require.NoError(t, err)

	ok, err := backup.New(dst, codec).RestoreFile(ctx, path, "pw")
	require.ErrorIs(t, err, backup.ErrPartialReplay)
	assert.False(t, ok)

	b, err := dst.ListBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"existing"}, batchIDs(b), "batches must be rolled back")
}

func TestBackupRestore_DefaultKDF(t *testing.T) {
	if testing.Short() {
		t.Skip("full-strength key derivation")
	}
	codec := cryptox.NewCodec(nil)
	ctx := context.Background()

	src := NewMemory()
	seed(t, src)
	path := backupFile(t, codec, src, "correct-horse")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	dst := newSQLite(t)
	ok, err := backup.New(dst, codec).RestoreFromBackup(ctx, data, "correct-horse")
	require.NoError(t, err)
	require.True(t, ok)
	assertSeeded(t, dst)
}
