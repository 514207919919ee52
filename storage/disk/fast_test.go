package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/tiered-cache/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("", 0)
	require.Error(t, err)
	assert.Equal(t, string(errors.CodeInvalidConfig), storage.Code(err))
}

func TestValuesSurviveReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "fast.json")
	f, err := Open(path, 1024)
	require.NoError(t, err)

	require.NoError(t, f.Set("tc_version", "1.0.0"))
	require.NoError(t, f.Set("tc_g/feed", `{"data":[1]}`))
	f.Remove("tc_g/feed")

	reopened, err := Open(path, 1024)
	require.NoError(t, err)
	v, ok := reopened.Get("tc_version")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", v)
	_, ok = reopened.Get("tc_g/feed")
	assert.False(t, ok)
	assert.Equal(t, f.Size(), reopened.Size())
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fast.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	f, err := Open(path, 1024)
	require.NoError(t, err)
	assert.Empty(t, f.Keys())
	require.NoError(t, f.Set("k", "v"))
}

func TestQuotaIsEnforced(t *testing.T) {
	t.Parallel()

	f, err := Open(filepath.Join(t.TempDir(), "fast.json"), 8)
	require.NoError(t, err)

	err = f.Set("key", "too-long-value")
	require.Error(t, err)
	assert.True(t, storage.IsQuotaExceeded(err))
	assert.Equal(t, int64(0), f.Size())
}
