package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/krisalay/tiered-cache/codec"
	"github.com/krisalay/tiered-cache/engine"
	"github.com/krisalay/tiered-cache/eviction"
	"github.com/krisalay/tiered-cache/expiration"
	"github.com/krisalay/tiered-cache/keys"
	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/storage/memory"
	"github.com/krisalay/tiered-cache/types"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultVersion is the schema version stamped on entries when none is configured.
	DefaultVersion = "1.0.0"

	// DefaultBulkThreshold is the serialized size above which records move
	// to the bulk tier.
	DefaultBulkThreshold = 50 << 10
)

// Policy and Lookup are re-exported so callers only import this package.
type (
	Policy = types.Policy
	Lookup = types.Lookup
)

/*
EntryCache is the versioned key/value cache.
This struct is the orchestrator that connects:
- the fast tier (markers, sidecars, small records)
- the bulk tier (large records)
- key namespacing
- expiration and eviction rules (through the engine)

No public method returns an error. Storage failures are logged through the
engine and turn writes into no-ops and reads into misses.
*/
type EntryCache struct {
	fast storage.FastTier

	// bulk is nil when the cache runs fast-tier-only.
	bulk storage.BulkTier

	// engine contains the rules: clock, TTLs, sweep trigger, metrics, logging.
	engine *engine.CacheEngine

	keys          keys.Namespacer
	version       string
	bulkThreshold int
	codec         codec.Codec

	// sweeps collapses concurrent CleanupOldCache runs into one scan.
	sweeps singleflight.Group
}

/*
NewEntryCache builds the cache and runs MigrateCache once.

fast may be nil (an in-memory tier is used). bulk may be nil, or fail its
Ping, in which case every record lives in the fast tier. eng may be nil.
*/
func NewEntryCache(
	ctx context.Context,
	fast storage.FastTier,
	bulk storage.BulkTier,
	eng *engine.CacheEngine,
	opts ...Option,
) *EntryCache {
	if eng == nil {
		eng = engine.NewCacheEngine(nil, nil, nil, nil)
	}
	if fast == nil {
		fast = memory.NewFast(0)
	}
	if bulk != nil {
		if err := bulk.Ping(ctx); err != nil {
			eng.Swallow(ctx, "bulk tier unavailable, using fast tier only", err)
			bulk = nil
		}
	}

	c := &EntryCache{
		fast:          fast,
		bulk:          bulk,
		engine:        eng,
		keys:          keys.New(""),
		version:       DefaultVersion,
		bulkThreshold: DefaultBulkThreshold,
		codec:         codec.Identity{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.MigrateCache(ctx)
	return c
}

// BulkEnabled reports whether large records go to a bulk tier.
func (c *EntryCache) BulkEnabled() bool { return c.bulk != nil }

// Version is the schema version stamped on every write.
func (c *EntryCache) Version() string { return c.version }

/*
Set stores data under key for scope.

The record goes to the bulk tier when its serialized form is larger than the
bulk threshold, with a sidecar in the fast tier pointing at it. Either way a
freshness marker is written to the fast tier. Keys ending in a sibling suffix
(see keys.Reserved) are logged and ignored.
*/
func (c *EntryCache) Set(ctx context.Context, key string, data any, p Policy, scope string) {
	if p.Strategy == types.None || key == "" {
		return
	}
	composed := c.keys.Compose(key, scope)
	attrs := []slog.Attr{slog.String("key", composed)}
	if !p.Strategy.Valid() {
		c.engine.Logger.LogAttrs(ctx, slog.LevelWarn, "unknown cache strategy",
			append(attrs, slog.String("strategy", string(p.Strategy)))...)
		return
	}
	if keys.Reserved(key) {
		c.engine.Logger.LogAttrs(ctx, slog.LevelWarn, "cache key uses a reserved suffix", attrs...)
		return
	}

	now := c.engine.NowMillis()
	record, err := c.encode(data, now, p.Strategy)
	if err != nil {
		c.engine.Swallow(ctx, "encode cache entry", err, attrs...)
		return
	}
	marker := strconv.FormatInt(now, 10)

	var ok bool
	if c.bulk != nil && len(record) > c.bulkThreshold {
		ok = c.setBulk(ctx, composed, record, marker, types.StorageMeta{
			Tier:      types.TierBulk,
			Timestamp: now,
			Strategy:  p.Strategy,
		})
	} else {
		ok = c.setFast(ctx, composed, string(record), marker)
	}

	if ok && c.engine.ShouldSweep() {
		c.CleanupOldCache(ctx)
	}
}

func (c *EntryCache) setBulk(ctx context.Context, composed string, record []byte, marker string, meta types.StorageMeta) bool {
	sidecar, err := json.Marshal(meta)
	if err != nil {
		c.engine.Swallow(ctx, "encode storage meta", err, slog.String("key", composed))
		return false
	}
	if err := c.bulk.PutRecord(ctx, composed, codec.Seal(record)); err != nil {
		c.engine.Swallow(ctx, "write bulk record", err,
			slog.String("key", composed), slog.String("tier", string(types.TierBulk)))
		return false
	}

	pending := []kv{
		{c.keys.Meta(composed), string(sidecar)},
		{c.keys.Marker(composed), marker},
	}
	if !c.writeFast(ctx, composed, pending) {
		return false
	}
	// A smaller previous version may still sit in the fast tier.
	c.fast.Remove(composed)
	return true
}

func (c *EntryCache) setFast(ctx context.Context, composed, record, marker string) bool {
	pending := []kv{
		{composed, record},
		{c.keys.Marker(composed), marker},
	}
	if !c.writeFast(ctx, composed, pending) {
		return false
	}
	c.fast.Remove(c.keys.Meta(composed))
	if c.bulk != nil {
		if err := c.bulk.DeleteRecord(ctx, composed); err != nil {
			c.engine.Swallow(ctx, "drop superseded bulk record", err, slog.String("key", composed))
		}
	}
	return true
}

type kv struct{ key, value string }

// writeFast makes room for pending if needed, then writes it in order.
func (c *EntryCache) writeFast(ctx context.Context, composed string, pending []kv) bool {
	var need int64
	for _, p := range pending {
		need += int64(len(p.key) + len(p.value))
	}
	if quota := c.fast.Quota(); eviction.OverQuota(0, need, quota) {
		c.engine.Swallow(ctx, "write fast tier", storage.QuotaExceeded(composed, need, quota),
			slog.String("key", composed), slog.String("tier", string(types.TierFast)))
		return false
	}
	if eviction.OverQuota(c.fast.Size(), need, c.fast.Quota()) {
		c.makeRoom(ctx, composed, need)
	}

	for _, p := range pending {
		if err := c.fast.Set(p.key, p.value); err != nil {
			c.engine.Swallow(ctx, "write fast tier", err,
				slog.String("key", p.key), slog.String("tier", string(types.TierFast)))
			return false
		}
	}
	return true
}

/*
makeRoom runs before a fast-tier write that would overflow the quota.

First every entry past twice its TTL is swept. If that is not enough, whole
entries are removed oldest marker first until the incoming bytes fit. The
entry being written is never chosen.
*/
func (c *EntryCache) makeRoom(ctx context.Context, keep string, need int64) {
	c.CleanupOldCache(ctx)
	quota := c.fast.Quota()
	if !eviction.OverQuota(c.fast.Size(), need, quota) {
		return
	}

	var cands []eviction.Candidate
	for _, k := range c.fast.Keys() {
		composed, ok := c.keys.FromMarker(k)
		if !ok || composed == keep {
			continue
		}
		ts, _ := c.markerTime(k)
		cands = append(cands, eviction.Candidate{
			Key:       composed,
			Timestamp: ts,
			Size:      c.fastFootprint(composed),
		})
	}

	victims, _ := eviction.TrimOldest(cands, c.fast.Size(), quota-need)
	for _, v := range victims {
		c.removeComposed(ctx, v.Key)
		c.engine.Metrics.Eviction()
	}
	if len(victims) > 0 {
		c.engine.Logger.LogAttrs(ctx, slog.LevelDebug, "evicted entries for space",
			slog.Int("count", len(victims)), slog.Int64("bytes", need))
	}
}

// fastFootprint is the fast-tier bytes held by one composed key and its siblings.
func (c *EntryCache) fastFootprint(composed string) int64 {
	var n int64
	for _, k := range []string{composed, c.keys.Marker(composed), c.keys.Meta(composed)} {
		if v, ok := c.fast.Get(k); ok {
			n += int64(len(k) + len(v))
		}
	}
	return n
}

/*
GetRaw returns the stored JSON for key in scope.

Freshness comes from the marker, or from the sidecar when the marker is gone.
Expired entries are misses unless p.Revalidate is set, in which case they are
returned with Stale set and the engine's refresh hook is told.
*/
func (c *EntryCache) GetRaw(ctx context.Context, key string, p Policy, scope string) (Lookup, bool) {
	if p.Strategy == types.None || !p.Strategy.Valid() || p.ForceRefresh || key == "" || keys.Reserved(key) {
		return Lookup{}, false
	}
	composed := c.keys.Compose(key, scope)

	ts, meta, ok := c.freshness(ctx, composed)
	if !ok {
		c.engine.Metrics.Miss()
		return Lookup{}, false
	}
	ttl := c.engine.TTL(p.Strategy, p.MaxAge)
	fresh := c.engine.IsFresh(ts, ttl)
	if !fresh && !p.Revalidate {
		c.engine.Metrics.Miss()
		return Lookup{}, false
	}

	ent, tier, ok := c.readRecord(ctx, composed, meta)
	if !ok || ent.Version != c.version {
		c.engine.Metrics.Miss()
		return Lookup{}, false
	}
	data, err := c.decodeData(ent)
	if err != nil {
		c.engine.Swallow(ctx, "decode cache entry", storage.Corrupt(err, composed), slog.String("key", composed))
		c.engine.Metrics.Miss()
		return Lookup{}, false
	}

	l := Lookup{
		Data:  data,
		Stale: !fresh,
		Age:   expiration.Age(ts, c.engine.Now()),
		Tier:  tier,
	}
	if fresh {
		c.engine.Metrics.Hit()
	} else {
		c.engine.OnStale(key, scope, ent)
	}
	return l, true
}

// Get reads key and decodes it into T. A payload that does not decode into T
// is a miss.
func Get[T any](ctx context.Context, c *EntryCache, key string, p Policy, scope string) (T, bool) {
	var out T
	if !c.Decode(ctx, key, p, scope, &out) {
		var zero T
		return zero, false
	}
	return out, true
}

// Decode reads key into out, which must be a pointer. It reports a hit.
func (c *EntryCache) Decode(ctx context.Context, key string, p Policy, scope string, out any) bool {
	l, ok := c.GetRaw(ctx, key, p, scope)
	if !ok {
		return false
	}
	if err := json.Unmarshal(l.Data, out); err != nil {
		c.engine.Swallow(ctx, "decode cached value", err, slog.String("key", key), slog.String("scope", scope))
		return false
	}
	return true
}

// Remove deletes key in scope from both tiers. Removing a missing key is a no-op.
func (c *EntryCache) Remove(ctx context.Context, key, scope string) {
	if key == "" || keys.Reserved(key) {
		return
	}
	c.removeComposed(ctx, c.keys.Compose(key, scope))
}

func (c *EntryCache) removeComposed(ctx context.Context, composed string) {
	c.fast.Remove(c.keys.Marker(composed))
	c.fast.Remove(c.keys.Meta(composed))
	c.fast.Remove(composed)
	if c.bulk != nil {
		if err := c.bulk.DeleteRecord(ctx, composed); err != nil {
			c.engine.Swallow(ctx, "delete bulk record", err, slog.String("key", composed))
		}
	}
}

// InvalidatePattern deletes every key in scope starting with prefix.
func (c *EntryCache) InvalidatePattern(ctx context.Context, prefix, scope string) {
	c.deletePrefix(ctx, c.keys.Compose(prefix, scope))
}

// ClearUserCache deletes every key owned by scope. Unscoped keys and other
// scopes are untouched. An empty scope does nothing.
func (c *EntryCache) ClearUserCache(ctx context.Context, scope string) {
	if scope == "" {
		return
	}
	c.deletePrefix(ctx, c.keys.ScopePrefix(scope))
}

// ClearAll deletes every key of the subsystem in both tiers and restamps the
// version marker.
func (c *EntryCache) ClearAll(ctx context.Context) {
	c.deletePrefix(ctx, c.keys.Global())
	if err := c.fast.Set(c.keys.Version(), c.version); err != nil {
		c.engine.Swallow(ctx, "write version marker", err)
	}
}

func (c *EntryCache) deletePrefix(ctx context.Context, prefix string) {
	for _, k := range c.fast.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.fast.Remove(k)
		}
	}
	if c.bulk == nil {
		return
	}
	recs, err := c.bulk.RecordKeys(ctx, prefix)
	if err != nil {
		c.engine.Swallow(ctx, "list bulk records", err, slog.String("key", prefix))
		return
	}
	for _, k := range recs {
		if err := c.bulk.DeleteRecord(ctx, k); err != nil {
			c.engine.Swallow(ctx, "delete bulk record", err, slog.String("key", k))
		}
	}
}

// freshness returns the write time of composed and its sidecar, if any.
func (c *EntryCache) freshness(ctx context.Context, composed string) (int64, *types.StorageMeta, bool) {
	meta := c.sidecar(ctx, composed)
	if ts, ok := c.markerTime(c.keys.Marker(composed)); ok {
		return ts, meta, true
	}
	if meta != nil {
		return meta.Timestamp, meta, true
	}
	return 0, nil, false
}

func (c *EntryCache) markerTime(marker string) (int64, bool) {
	v, ok := c.fast.Get(marker)
	if !ok {
		return 0, false
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func (c *EntryCache) sidecar(ctx context.Context, composed string) *types.StorageMeta {
	raw, ok := c.fast.Get(c.keys.Meta(composed))
	if !ok {
		return nil
	}
	var meta types.StorageMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		c.engine.Swallow(ctx, "decode storage meta", storage.Corrupt(err, composed), slog.String("key", composed))
		return nil
	}
	return &meta
}

func (c *EntryCache) readRecord(ctx context.Context, composed string, meta *types.StorageMeta) (types.Entry, types.Tier, bool) {
	var ent types.Entry
	if meta != nil && meta.Tier == types.TierBulk {
		if c.bulk == nil {
			return ent, types.TierBulk, false
		}
		sealed, ok, err := c.bulk.GetRecord(ctx, composed)
		if err != nil {
			c.engine.Swallow(ctx, "read bulk record", err, slog.String("key", composed))
			return ent, types.TierBulk, false
		}
		if !ok {
			return ent, types.TierBulk, false
		}
		record, err := codec.Open(sealed)
		if err == nil {
			err = json.Unmarshal(record, &ent)
		}
		if err != nil {
			c.engine.Swallow(ctx, "decode bulk record", storage.Corrupt(err, composed), slog.String("key", composed))
			return ent, types.TierBulk, false
		}
		return ent, types.TierBulk, true
	}

	raw, ok := c.fast.Get(composed)
	if !ok {
		return ent, types.TierFast, false
	}
	if err := json.Unmarshal([]byte(raw), &ent); err != nil {
		c.engine.Swallow(ctx, "decode fast record", storage.Corrupt(err, composed), slog.String("key", composed))
		return ent, types.TierFast, false
	}
	return ent, types.TierFast, true
}

// encode serializes data into a full entry record.
func (c *EntryCache) encode(data any, now int64, s types.Strategy) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ent := types.Entry{
		Data:      payload,
		Timestamp: now,
		Version:   c.version,
		Strategy:  s,
	}
	if c.codec.Compresses() {
		packed, err := c.codec.Encode(payload)
		if err != nil {
			return nil, err
		}
		// []byte marshals as a base64 JSON string.
		if ent.Data, err = json.Marshal(packed); err != nil {
			return nil, err
		}
		ent.Compressed = true
	}
	return json.Marshal(ent)
}

func (c *EntryCache) decodeData(ent types.Entry) (json.RawMessage, error) {
	if !ent.Compressed {
		return ent.Data, nil
	}
	if !c.codec.Compresses() {
		return nil, errCodecMismatch
	}
	var packed []byte
	if err := json.Unmarshal(ent.Data, &packed); err != nil {
		return nil, err
	}
	return c.codec.Decode(packed)
}
