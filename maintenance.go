package cache

import (
	"context"
	"log/slog"

	"github.com/jmgilman/go/errors"
	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

// errCodecMismatch is returned when a compressed entry is read by a cache
// configured without a compressing codec.
var errCodecMismatch = errors.New(storage.CodeCorrupt, "entry compressed by an unavailable codec")

/*
MigrateCache compares the persisted version marker with the cache's version.

On any mismatch, including a missing marker, every key of the subsystem is
deleted and the marker is rewritten. There is no partial upgrade path.
NewEntryCache calls it once.
*/
func (c *EntryCache) MigrateCache(ctx context.Context) {
	persisted, ok := c.fast.Get(c.keys.Version())
	if ok && persisted == c.version {
		return
	}
	c.engine.Logger.LogAttrs(ctx, slog.LevelInfo, "cache version changed, clearing",
		slog.String("from", persisted), slog.String("to", c.version))
	c.ClearAll(ctx)
}

/*
CleanupOldCache deletes every entry older than twice its TTL and returns how
many it removed.

The strategy of an entry comes from its sidecar, or Short when it has none,
so small records written under a longer strategy are swept on the Short
schedule. Unparseable markers are removed with their entry. Concurrent
callers share one scan.
*/
func (c *EntryCache) CleanupOldCache(ctx context.Context) int {
	v, _, _ := c.sweeps.Do("entries", func() (any, error) {
		return c.sweep(ctx), nil
	})
	return v.(int)
}

func (c *EntryCache) sweep(ctx context.Context) int {
	removed := 0
	for _, k := range c.fast.Keys() {
		composed, ok := c.keys.FromMarker(k)
		if !ok {
			continue
		}

		ts, ok := c.markerTime(k)
		if ok {
			strategy := types.Short
			if meta := c.sidecar(ctx, composed); meta != nil && meta.Strategy.Valid() {
				strategy = meta.Strategy
			}
			if !c.engine.IsSweepable(ts, c.engine.TTL(strategy, 0)) {
				continue
			}
		}

		c.removeComposed(ctx, composed)
		c.engine.Metrics.Expire()
		removed++
	}
	if removed > 0 {
		c.engine.Logger.LogAttrs(ctx, slog.LevelDebug, "swept expired entries", slog.Int("count", removed))
	}
	return removed
}
