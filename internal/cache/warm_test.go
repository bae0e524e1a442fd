package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestWarmTier(t *testing.T) *warmTier {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warm.db")
	w, err := openWarmTier(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.close() })
	return w
}

func TestOpenWarmTier_EmptyPathIsConfigurationError(t *testing.T) {
	_, err := openWarmTier("")
	require.Error(t, err)
}

func TestWarmTier_SetThenGetRoundTrips(t *testing.T) {
	w := openTestWarmTier(t)
	ctx := context.Background()
	now := time.Now()
	row := warmRow{Key: "k1", Payload: []byte("v"), CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1", Size: 1}
	require.NoError(t, w.set(ctx, row))

	got, ok, err := w.get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(got.Payload))
}

func TestWarmTier_SetIsUpsert(t *testing.T) {
	w := openTestWarmTier(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, w.set(ctx, warmRow{Key: "k1", Payload: []byte("v1"), CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1"}))
	require.NoError(t, w.set(ctx, warmRow{Key: "k1", Payload: []byte("v2"), CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1"}))

	got, ok, err := w.get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(got.Payload))
}

func TestWarmTier_InvalidatePrefix_CountsDeletedRows(t *testing.T) {
	w := openTestWarmTier(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, w.set(ctx, warmRow{Key: "a:1", CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1"}))
	require.NoError(t, w.set(ctx, warmRow{Key: "a:2", CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1"}))
	require.NoError(t, w.set(ctx, warmRow{Key: "b:1", CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1"}))

	n, err := w.invalidatePrefix(ctx, "a:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWarmTier_ExpiredEntryReportedAsMiss(t *testing.T) {
	w := openTestWarmTier(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, w.set(ctx, warmRow{Key: "stale", CreatedAt: now, ExpiresAt: now.Add(-time.Second), Version: "v1"}))

	_, ok, err := w.get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWarmTier_ExportImportRoundTrips(t *testing.T) {
	w := openTestWarmTier(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, w.set(ctx, warmRow{Key: "k1", Payload: []byte("v"), CreatedAt: now, ExpiresAt: now.Add(time.Hour), Version: "v1"}))

	rows, err := w.export(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	w2 := openTestWarmTier(t)
	require.NoError(t, w2.importRows(ctx, rows))
	got, ok, err := w2.get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(got.Payload))
}
