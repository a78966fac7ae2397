package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chis/tagwatch/internal/logging"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "history.db"), logging.New())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStorageCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := NewSQLiteStorage(dbPath, logging.New())
	require.NoError(t, err)
	defer s.Close()
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s1, err := NewSQLiteStorage(dbPath, logging.New())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopen: already-applied migrations must be skipped cleanly
	s2, err := NewSQLiteStorage(dbPath, logging.New())
	require.NoError(t, err)
	defer s2.Close()
}

func TestLogCheckBatchAndGetRecentChecks(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	earlier := time.Now().Add(-time.Hour)
	later := time.Now()

	require.NoError(t, s.LogCheckBatch(ctx, []CheckHistoryEntry{
		{
			ContainerName: "db",
			Image:         "postgres:14.1",
			CurrentTag:    "14.1",
			LatestVersion: "14.2",
			Status:        StatusNotified,
			CheckTime:     earlier,
		},
		{
			ContainerName: "web",
			Image:         "nginx:1.25.3",
			CurrentTag:    "1.25.3",
			Status:        StatusUpToDate,
			CheckTime:     later,
		},
		{
			ContainerName: "broken",
			Image:         "ghost:latest",
			Status:        StatusFailed,
			Error:         "registry returned 500",
			CheckTime:     later,
		},
	}))

	entries, err := s.GetRecentChecks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, "db", entries[2].ContainerName)
	assert.Equal(t, StatusNotified, entries[2].Status)
	assert.Equal(t, "14.2", entries[2].LatestVersion)

	failed := entries[0]
	if failed.ContainerName != "broken" {
		failed = entries[1]
	}
	assert.Equal(t, "registry returned 500", failed.Error)
}

func TestLogCheckBatchEmptyIsNoop(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.LogCheckBatch(context.Background(), nil))

	entries, err := s.GetRecentChecks(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetRecentChecksHonorsLimit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	batch := make([]CheckHistoryEntry, 5)
	for i := range batch {
		batch[i] = CheckHistoryEntry{
			ContainerName: "web",
			Image:         "nginx:1.25",
			Status:        StatusUpToDate,
			CheckTime:     time.Now().Add(time.Duration(i) * time.Minute),
		}
	}
	require.NoError(t, s.LogCheckBatch(ctx, batch))

	entries, err := s.GetRecentChecks(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
