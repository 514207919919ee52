package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

func TestFastQuota(t *testing.T) {
	f := NewFast(20)

	require.NoError(t, f.Set("a", "0123456789"))
	assert.Equal(t, int64(11), f.Size())

	err := f.Set("b", "0123456789")
	require.Error(t, err)
	assert.True(t, storage.IsQuotaExceeded(err))
	_, ok := f.Get("b")
	assert.False(t, ok)

	// Replacing a key only counts the difference.
	require.NoError(t, f.Set("a", "0123456789abcdefgh"))
	assert.Equal(t, int64(19), f.Size())

	f.Remove("a")
	f.Remove("a")
	assert.Equal(t, int64(0), f.Size())
	assert.Empty(t, f.Keys())
}

func TestFastSnapshotIsolation(t *testing.T) {
	f := Seed(0, map[string]string{"k": "v"})
	snap := f.Snapshot()
	snap["k"] = "changed"

	v, ok := f.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, int64(DefaultFastQuota), f.Quota())
}

func TestBulkRecordsAndAssets(t *testing.T) {
	ctx := context.Background()
	b := NewBulk()
	require.NoError(t, b.Ping(ctx))

	require.NoError(t, b.PutRecord(ctx, "tc_g/a", []byte("1")))
	require.NoError(t, b.PutRecord(ctx, "tc_u/x/a", []byte("2")))
	keys, err := b.RecordKeys(ctx, "tc_u/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tc_u/x/a"}, keys)

	blob := []byte("png")
	require.NoError(t, b.PutAsset(ctx, types.CachedAsset{URL: "u", Blob: blob, Timestamp: 1, Size: 3}))
	blob[0] = 'X'
	got, ok, err := b.GetAsset(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("png"), got.Blob)

	infos, err := b.ListAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.AssetInfo{{URL: "u", Timestamp: 1, Size: 3}}, infos)

	require.NoError(t, b.ClearAssets(ctx))
	_, ok, err = b.GetAsset(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBulkUnsupported(t *testing.T) {
	ctx := context.Background()
	b := NewBulk()
	b.Unsupported = true

	assert.ErrorIs(t, b.Ping(ctx), storage.ErrUnsupported)
	assert.ErrorIs(t, b.PutRecord(ctx, "k", nil), storage.ErrUnsupported)

	b = NewBulk()
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Ping(ctx), storage.ErrUnsupported)
}
