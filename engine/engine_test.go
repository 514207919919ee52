package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/tiered-cache/refresh"
	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

func TestNewCacheEngineDefaults(t *testing.T) {
	e := NewCacheEngine(nil, nil, nil, nil)

	require.NotNil(t, e.Expiration)
	require.NotNil(t, e.Logger)
	assert.IsType(t, types.NoopMetrics{}, e.Metrics)
	assert.Equal(t, 2*time.Minute, e.TTL(types.Short, 0))
	assert.Equal(t, 5*time.Second, e.TTL(types.Long, 5*time.Second))
}

func TestFreshness(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	e := NewCacheEngine(nil, nil, nil, nil)
	e.Clock = func() time.Time { return now }

	written := now.Add(-90 * time.Second).UnixMilli()
	assert.False(t, e.IsFresh(written, time.Minute))
	assert.False(t, e.IsSweepable(written, time.Minute))
	assert.True(t, e.IsFresh(written, 2*time.Minute))

	old := now.Add(-121 * time.Second).UnixMilli()
	assert.True(t, e.IsSweepable(old, time.Minute))
	assert.Equal(t, now.UnixMilli(), e.NowMillis())
}

func TestOnStaleNotifiesHook(t *testing.T) {
	var (
		gotKey, gotScope string
		metrics          types.Counters
	)
	hook := refresh.HookFunc(func(key, scope string, ent types.Entry) {
		gotKey, gotScope = key, scope
	})
	e := NewCacheEngine(nil, hook, &metrics, nil)

	e.OnStale("feed", "42", types.Entry{Version: "1.0.0"})
	assert.Equal(t, "feed", gotKey)
	assert.Equal(t, "42", gotScope)
	assert.Equal(t, int64(1), metrics.Stales.Load())

	// No hook is fine.
	NewCacheEngine(nil, nil, nil, nil).OnStale("feed", "", types.Entry{})
}

func TestShouldSweep(t *testing.T) {
	e := NewCacheEngine(nil, nil, nil, nil)
	e.Trigger.Rand = func() float64 { return 0.05 }
	assert.True(t, e.ShouldSweep())

	e.Trigger.Rand = func() float64 { return 0.5 }
	assert.False(t, e.ShouldSweep())

	e.Trigger = nil
	assert.False(t, e.ShouldSweep())
}

func TestSwallowLogsCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewCacheEngine(nil, nil, nil, logger)
	ctx := context.Background()

	e.Swallow(ctx, "write fast tier", storage.QuotaExceeded("k", 10, 5), slog.String("key", "k"))
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "STORAGE_QUOTA_EXCEEDED")
	assert.Contains(t, out, "key=k")

	buf.Reset()
	e.Swallow(ctx, "decode", storage.Corrupt(errors.New("bad json"), "k"))
	assert.Contains(t, buf.String(), "level=DEBUG")

	buf.Reset()
	e.Swallow(ctx, "nothing", nil)
	assert.Empty(t, buf.String())
}
