// Package api declares the public contracts of the tiered cache.
//
// Feature code should depend on these interfaces rather than on the concrete
// caches, so tests can swap in fakes and the storage tiers stay hidden.
package api

import (
	"context"

	cache "github.com/krisalay/tiered-cache"
	"github.com/krisalay/tiered-cache/asset"
	"github.com/krisalay/tiered-cache/types"
)

/*
EntryStore is the PUBLIC API of the versioned entry cache.
It guarantees certain behaviors without exposing tiers, key layout,
sidecars or eviction.

No method returns an error. A failed write is a no-op, a failed read is a miss.
*/
type EntryStore interface {

	/*
		Set stores data under key for scope.

		BEHAVIOR:
		---------
		- NONE strategy: nothing is written
		- Small records go to the fast tier
		- Large records go to the bulk tier, with a sidecar in the fast tier
		- A freshness marker is always written
		- May evict the oldest entries first if the fast tier is full
	*/
	Set(ctx context.Context, key string, data any, p types.Policy, scope string)

	/*
		GetRaw returns the stored JSON for key in scope.

		BEHAVIOR:
		---------
		1. NONE strategy or ForceRefresh: miss
		2. Fresh entry with the current version: hit
		3. Expired entry without Revalidate: miss
		4. Expired entry with Revalidate: hit with Stale set

		The cache never refetches. Refreshing a stale entry is the caller's job.
	*/
	GetRaw(ctx context.Context, key string, p types.Policy, scope string) (types.Lookup, bool)

	// Decode is GetRaw followed by json.Unmarshal into out.
	Decode(ctx context.Context, key string, p types.Policy, scope string, out any) bool

	/*
		Remove deletes key from every tier.

		This operation is idempotent:
		- Removing a non-existing key is safe
	*/
	Remove(ctx context.Context, key, scope string)

	// InvalidatePattern removes every key of scope starting with prefix.
	InvalidatePattern(ctx context.Context, prefix, scope string)

	// ClearUserCache removes every key owned by scope, e.g. on logout.
	ClearUserCache(ctx context.Context, scope string)

	// ClearAll removes every key of the subsystem.
	ClearAll(ctx context.Context)

	/*
		CleanupOldCache deletes entries older than twice their TTL.

		WHEN IT RUNS:
		-------------
		- With a small probability after each write
		- Before a write that would overflow the fast tier
		- Whenever the caller asks
	*/
	CleanupOldCache(ctx context.Context) int
}

/*
AssetStore is the PUBLIC API of the binary asset cache.

Handles returned here may be released by the cache at any time (memory
eviction, ClearImageCache, Close). Check Released before reusing one.
*/
type AssetStore interface {

	// GetCachedImage returns the cached handle for url, from memory or disk.
	GetCachedImage(ctx context.Context, url string) (*asset.Handle, bool)

	// CacheImage stores blob for url and returns its handle.
	CacheImage(ctx context.Context, url string, blob []byte) *asset.Handle

	/*
		PreloadAndCacheImage returns the cached handle, fetching the resource
		first when nothing is cached.

		Network failures are misses, never errors.
	*/
	PreloadAndCacheImage(ctx context.Context, url string) (*asset.Handle, bool)

	// CleanupCache enforces the age limit and the byte cap on persisted assets.
	CleanupCache(ctx context.Context) int

	// ClearImageCache releases every handle and deletes every persisted asset.
	ClearImageCache(ctx context.Context)

	// GetCacheStats is read-only.
	GetCacheStats(ctx context.Context) asset.Stats

	/*
		Close gracefully shuts down the cache.

		BEHAVIOR:
		---------
		- Flushes any pending write-back operations
		- Stops the write-back worker
		- Releases every handle
	*/
	Close()
}

var (
	_ EntryStore = (*cache.EntryCache)(nil)
	_ AssetStore = (*asset.Cache)(nil)
)
