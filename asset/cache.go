// Package asset caches binary resources (images) by URL.
//
// Two levels: a bounded in-memory map of Handles for instant reuse inside the
// process, and a persisted store capped by age and total bytes. Neither level
// reports errors to callers; failures become misses or no-ops.
package asset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/krisalay/tiered-cache/engine"
	"github.com/krisalay/tiered-cache/eviction"
	"github.com/krisalay/tiered-cache/expiration"
	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
	"github.com/krisalay/tiered-cache/writepolicy"
	"golang.org/x/sync/singleflight"
)

// Stats is a read-only snapshot of the cache.
type Stats struct {
	MemoryCount    int
	PersistedCount int

	// TotalBytes is the persisted blob total, or the in-memory total when the
	// cache runs without a store.
	TotalBytes int64
}

/*
Cache is the binary asset cache.
It connects:
- the memory map (handles, bounded, FIFO by default)
- the asset store (persisted records)
- the write policy (how records reach the store)
- the engine (clock, metrics, logging)
*/
type Cache struct {
	// store is nil in memory-only mode.
	store  storage.AssetStore
	writes writepolicy.WritePolicy
	engine *engine.CacheEngine
	cfg    settings

	mu     sync.Mutex
	memory map[string]*Handle
	order  eviction.Policy

	// fetches deduplicates concurrent preloads of one URL.
	fetches singleflight.Group

	// cleanups collapses concurrent CleanupCache scans.
	cleanups singleflight.Group
}

type pinger interface {
	Ping(ctx context.Context) error
}

/*
NewCache builds an asset cache over store.

store may be nil. A store that also implements Ping and fails it is dropped,
and the cache keeps blobs in memory only.
*/
func NewCache(ctx context.Context, store storage.AssetStore, eng *engine.CacheEngine, opts ...Option) *Cache {
	if eng == nil {
		eng = engine.NewCacheEngine(nil, nil, nil, nil)
	}
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.fetcher == nil {
		cfg.fetcher = NewHTTPFetcher(cfg.maxBytes)
	}

	if p, ok := store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			eng.Swallow(ctx, "asset store unavailable, using memory only", err)
			store = nil
		}
	}

	c := &Cache{
		store:  store,
		engine: eng,
		cfg:    cfg,
		memory: make(map[string]*Handle, cfg.memEntries),
		order:  eviction.NewEvictionPolicy(cfg.memPolicy),
	}
	if store != nil {
		if cfg.writePolicy == writepolicy.Back {
			c.writes = writepolicy.NewWriteBackPolicy(store, cfg.writeBuffer, eng.Logger)
		} else {
			c.writes = writepolicy.NewWriteThroughPolicy(store, eng.Logger)
		}
	}
	return c
}

// Persistent reports whether assets survive the process.
func (c *Cache) Persistent() bool { return c.store != nil }

/*
GetCachedImage returns the handle cached for url.

The memory map answers first. On a memory miss the persisted record is
promoted into the map if it is younger than the max age, and deleted if not.
*/
func (c *Cache) GetCachedImage(ctx context.Context, url string) (*Handle, bool) {
	if url == "" {
		return nil, false
	}
	c.mu.Lock()
	if h, ok := c.memory[url]; ok {
		c.order.OnGet(url)
		c.mu.Unlock()
		c.engine.Metrics.Hit()
		return h, true
	}
	c.mu.Unlock()

	if c.store == nil {
		c.engine.Metrics.Miss()
		return nil, false
	}
	a, ok, err := c.store.GetAsset(ctx, url)
	if err != nil {
		c.engine.Swallow(ctx, "read asset", err, slog.String("url", url))
	}
	if err != nil || !ok {
		c.engine.Metrics.Miss()
		return nil, false
	}

	if !c.fresh(a.Timestamp) {
		if err := c.store.DeleteAsset(ctx, url); err != nil {
			c.engine.Swallow(ctx, "delete expired asset", err, slog.String("url", url))
		}
		c.engine.Metrics.Expire()
		c.engine.Metrics.Miss()
		return nil, false
	}

	h := c.admit(url, newHandle(url, a.Blob), false)
	c.engine.Metrics.Hit()
	return h, true
}

/*
CacheImage stores blob under url and returns its handle.

The handle goes into the memory map first, so it is readable at once. The
record is then handed to the write policy, and CleanupCache runs after it
was persisted.
*/
func (c *Cache) CacheImage(ctx context.Context, url string, blob []byte) *Handle {
	if url == "" || blob == nil {
		return nil
	}
	own := make([]byte, len(blob))
	copy(own, blob)

	h := c.admit(url, newHandle(url, own), true)
	if c.writes == nil {
		return h
	}
	c.writes.OnWrite(ctx, types.CachedAsset{
		URL:       url,
		Blob:      own,
		Timestamp: c.engine.NowMillis(),
		Size:      int64(len(own)),
	}, func(ctx context.Context) { c.CleanupCache(ctx) })
	return h
}

/*
PreloadAndCacheImage returns the cached handle for url, fetching and caching
the resource first when nothing is cached. Any fetch failure is a miss.
Concurrent preloads of one URL share a single fetch.
*/
func (c *Cache) PreloadAndCacheImage(ctx context.Context, url string) (*Handle, bool) {
	if h, ok := c.GetCachedImage(ctx, url); ok {
		return h, true
	}
	if url == "" {
		return nil, false
	}

	v, err, _ := c.fetches.Do(url, func() (any, error) {
		blob, err := c.cfg.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return c.CacheImage(ctx, url, blob), nil
	})
	if err != nil {
		c.engine.Logger.LogAttrs(ctx, slog.LevelDebug, "preload asset failed",
			slog.String("url", url), slog.Any("err", err))
		return nil, false
	}
	h, _ := v.(*Handle)
	return h, h != nil
}

/*
CleanupCache enforces the persisted limits and returns how many records it
deleted.

Records older than the max age go first. If the rest still exceeds the byte
cap, the oldest are deleted until the total fits.
*/
func (c *Cache) CleanupCache(ctx context.Context) int {
	if c.store == nil {
		return 0
	}
	v, _, _ := c.cleanups.Do("assets", func() (any, error) {
		return c.cleanup(ctx), nil
	})
	return v.(int)
}

func (c *Cache) cleanup(ctx context.Context) int {
	infos, err := c.store.ListAssets(ctx)
	if err != nil {
		c.engine.Swallow(ctx, "list assets", err)
		return 0
	}

	removed := 0
	var (
		cands []eviction.Candidate
		total int64
	)
	for _, info := range infos {
		if !c.fresh(info.Timestamp) {
			if c.deleteAsset(ctx, info.URL) {
				c.engine.Metrics.Expire()
				removed++
			}
			continue
		}
		cands = append(cands, eviction.Candidate{Key: info.URL, Timestamp: info.Timestamp, Size: info.Size})
		total += info.Size
	}

	victims, remaining := eviction.TrimOldest(cands, total, c.cfg.maxBytes)
	for _, v := range victims {
		if c.deleteAsset(ctx, v.Key) {
			c.engine.Metrics.Eviction()
			removed++
		}
	}
	if removed > 0 {
		c.engine.Logger.LogAttrs(ctx, slog.LevelDebug, "asset cleanup",
			slog.Int("count", removed), slog.Int64("bytes", remaining))
	}
	return removed
}

func (c *Cache) deleteAsset(ctx context.Context, url string) bool {
	if err := c.store.DeleteAsset(ctx, url); err != nil {
		c.engine.Swallow(ctx, "delete asset", err, slog.String("url", url))
		return false
	}
	return true
}

// ClearImageCache releases every handle, empties the memory map and deletes
// every persisted asset.
func (c *Cache) ClearImageCache(ctx context.Context) {
	c.releaseAll()
	if c.store == nil {
		return
	}
	if err := c.store.ClearAssets(ctx); err != nil {
		c.engine.Swallow(ctx, "clear assets", err)
	}
}

// GetCacheStats reports counts and bytes without changing anything.
func (c *Cache) GetCacheStats(ctx context.Context) Stats {
	c.mu.Lock()
	st := Stats{MemoryCount: len(c.memory)}
	if c.store == nil {
		for _, h := range c.memory {
			st.TotalBytes += h.Size()
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return st
	}
	infos, err := c.store.ListAssets(ctx)
	if err != nil {
		c.engine.Swallow(ctx, "list assets", err)
		return st
	}
	st.PersistedCount = len(infos)
	for _, info := range infos {
		st.TotalBytes += info.Size
	}
	return st
}

// Close flushes pending writes and releases every handle.
func (c *Cache) Close() {
	if c.writes != nil {
		c.writes.Close()
	}
	c.releaseAll()
}

/*
admit puts h into the memory map under url and returns the handle now held.

When url is already present, replace decides between keeping the existing
handle (a promotion raced another) and swapping in h. If the map is full,
the eviction policy picks a victim and its handle is released.
*/
func (c *Cache) admit(url string, h *Handle, replace bool) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.memory[url]; ok {
		if !replace {
			h.Release()
			return old
		}
		old.Release()
		c.memory[url] = h
		return h
	}

	for len(c.memory) >= c.cfg.memEntries {
		victim := c.order.Evict()
		if victim == "" {
			break
		}
		if old, ok := c.memory[victim]; ok {
			old.Release()
			delete(c.memory, victim)
			c.engine.Metrics.Eviction()
		}
	}
	c.memory[url] = h
	c.order.OnPut(url)
	return h
}

func (c *Cache) releaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.memory {
		h.Release()
	}
	c.memory = make(map[string]*Handle, c.cfg.memEntries)
	c.order = eviction.NewEvictionPolicy(c.cfg.memPolicy)
}

func (c *Cache) fresh(ts int64) bool {
	return expiration.Age(ts, c.engine.Now()) < c.cfg.maxAge
}
