// Package storage declares the two storage tiers the caches are written against.
//
// Both tiers hold derived data only. Anything stored here can be discarded
// and rebuilt from the network, so implementations favour availability over
// durability.
package storage

import (
	"context"

	"github.com/krisalay/tiered-cache/types"
)

/*
FastTier is the small-capacity, synchronous, string-keyed store.

It holds hot metadata (freshness markers, tier sidecars, the version marker)
and small payloads. Implementations enforce a byte quota and reject writes
that would exceed it with a CodeQuotaExceeded error.
*/
type FastTier interface {

	// Get returns the value stored under key.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string)

	// Keys returns every stored key in unspecified order.
	Keys() []string

	// Size is a cheap estimate of the bytes currently used.
	Size() int64

	// Quota is the byte budget; Size never exceeds it.
	Quota() int64
}

// RecordStore is the key-addressed half of the bulk tier holding serialized
// entries too large for the fast tier.
type RecordStore interface {
	GetRecord(ctx context.Context, key string) ([]byte, bool, error)
	PutRecord(ctx context.Context, key string, record []byte) error
	DeleteRecord(ctx context.Context, key string) error

	// RecordKeys lists record keys starting with prefix.
	RecordKeys(ctx context.Context, prefix string) ([]string, error)
}

// AssetStore is the URL-addressed half of the bulk tier holding binary blobs.
type AssetStore interface {
	GetAsset(ctx context.Context, url string) (types.CachedAsset, bool, error)
	PutAsset(ctx context.Context, asset types.CachedAsset) error
	DeleteAsset(ctx context.Context, url string) error

	// ListAssets returns metadata for every persisted asset without blobs.
	ListAssets(ctx context.Context) ([]types.AssetInfo, error)

	// ClearAssets deletes every persisted asset.
	ClearAssets(ctx context.Context) error
}

// BulkTier is the larger-capacity structured store. All calls may block.
type BulkTier interface {
	RecordStore
	AssetStore

	// Ping reports whether the tier is usable. A failing Ping at construction
	// time puts the caches into fast-tier-only mode.
	Ping(ctx context.Context) error

	Close() error
}
