package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/krisalay/tiered-cache/eviction"
	"github.com/krisalay/tiered-cache/expiration"
	"github.com/krisalay/tiered-cache/refresh"
	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

/*
CacheEngine is the policy layer shared by the entry cache and the asset cache.

It decides:
- What time it is (Clock)
- How long a strategy keeps data fresh (Expiration)
- When an opportunistic sweep runs (Trigger)
- Who hears about stale reads (Refresh)
- Where events and swallowed errors go (Metrics, Logger)

It does NOT store data, pick tiers, or delete anything.
*/
type CacheEngine struct {

	// Expiration maps strategies to TTLs.
	Expiration *expiration.Policy

	// Refresh is told when a revalidating read serves stale data. Optional.
	Refresh refresh.Hook

	// Metrics counts hits, misses, stale reads, evictions, expirations.
	Metrics types.Metrics

	// Logger receives every storage error the caches swallow.
	Logger *slog.Logger

	// Clock returns the current time. Tests move it forward to age entries.
	Clock func() time.Time

	// Trigger decides when writes also sweep.
	Trigger *eviction.Trigger
}

/*
NewCacheEngine creates a CacheEngine. Every argument may be nil:
- exp defaults to the standard TTL table
- hook defaults to no notification
- metrics defaults to NoopMetrics
- logger defaults to a discarding logger
*/
func NewCacheEngine(
	exp *expiration.Policy,
	hook refresh.Hook,
	metrics types.Metrics,
	logger *slog.Logger,
) *CacheEngine {
	if exp == nil {
		exp = expiration.NewPolicy(nil)
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CacheEngine{
		Expiration: exp,
		Refresh:    hook,
		Metrics:    metrics,
		Logger:     logger,
		Clock:      time.Now,
		Trigger:    eviction.NewTrigger(eviction.DefaultSweepProbability),
	}
}

// Now returns the engine's current time.
func (e *CacheEngine) Now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

// NowMillis returns Now as unix milliseconds, the unit stored in records.
func (e *CacheEngine) NowMillis() int64 {
	return e.Now().UnixMilli()
}

// TTL resolves the lifetime of strategy s, honouring a caller override.
func (e *CacheEngine) TTL(s types.Strategy, override time.Duration) time.Duration {
	return e.Expiration.TTL(s, override)
}

// IsFresh reports whether a record written at ts is still within ttl.
func (e *CacheEngine) IsFresh(ts int64, ttl time.Duration) bool {
	return expiration.IsFresh(ts, e.Now(), ttl)
}

// IsSweepable reports whether a record written at ts may be deleted by cleanup.
func (e *CacheEngine) IsSweepable(ts int64, ttl time.Duration) bool {
	return expiration.IsSweepable(ts, e.Now(), ttl)
}

// ShouldSweep rolls the opportunistic cleanup dice for one write.
func (e *CacheEngine) ShouldSweep() bool {
	return e.Trigger.ShouldSweep()
}

/*
OnStale is called when a revalidating read returns expired data.
It records the metric and hands the entry to the refresh hook; it never
refetches or rewrites anything itself.
*/
func (e *CacheEngine) OnStale(key, scope string, ent types.Entry) {
	e.Metrics.Stale()
	if e.Refresh != nil {
		e.Refresh.OnStale(key, scope, ent)
	}
}

// Swallow logs an error a public cache call is about to hide from its caller.
func (e *CacheEngine) Swallow(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if err == nil {
		return
	}
	level := slog.LevelWarn
	if storage.IsCorrupt(err) {
		level = slog.LevelDebug
	}
	attrs = append(attrs, slog.String("code", storage.Code(err)), slog.Any("err", err))
	e.Logger.LogAttrs(ctx, level, msg, attrs...)
}
