package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bulk.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	require.Error(t, err)
}

func TestOpenRunsMigrationsOnce(t *testing.T) {
	store, path := openTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	again, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	sqlDB, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() {
		_ = sqlDB.Close()
	}()

	var applied int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
	for _, table := range []string{"records", "assets"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	_, ok, err := store.GetRecord(ctx, "tc_g/feed")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutRecord(ctx, "tc_g/feed", []byte("v1")))
	require.NoError(t, store.PutRecord(ctx, "tc_g/feed", []byte("v2")))
	require.NoError(t, store.PutRecord(ctx, "tc_u/7/posts", []byte("p")))

	got, ok, err := store.GetRecord(ctx, "tc_g/feed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)

	keys, err := store.RecordKeys(ctx, "tc_u/7/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tc_u/7/posts"}, keys)

	keys, err = store.RecordKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, store.DeleteRecord(ctx, "tc_g/feed"))
	require.NoError(t, store.DeleteRecord(ctx, "tc_g/feed"))
	_, ok, err = store.GetRecord(ctx, "tc_g/feed")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.PutRecord(ctx, "", nil), storage.ErrEmptyKey)
}

func TestAssetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	require.NoError(t, store.PutAsset(ctx, types.CachedAsset{URL: "https://x/b.png", Blob: []byte("bb"), Timestamp: 200, Size: 2}))
	require.NoError(t, store.PutAsset(ctx, types.CachedAsset{URL: "https://x/a.png", Blob: []byte("aaa"), Timestamp: 100, Size: 3}))

	got, ok, err := store.GetAsset(ctx, "https://x/a.png")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("aaa"), got.Blob)
	assert.Equal(t, int64(100), got.Timestamp)

	infos, err := store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.AssetInfo{
		{URL: "https://x/a.png", Timestamp: 100, Size: 3},
		{URL: "https://x/b.png", Timestamp: 200, Size: 2},
	}, infos)

	require.NoError(t, store.DeleteAsset(ctx, "https://x/a.png"))
	infos, err = store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)

	require.NoError(t, store.ClearAssets(ctx))
	infos, err = store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestClosedStoreIsUnsupported(t *testing.T) {
	var store *Store
	assert.ErrorIs(t, store.Ping(context.Background()), storage.ErrUnsupported)
	assert.NoError(t, store.Close())
}
