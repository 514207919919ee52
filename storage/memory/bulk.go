package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

// Bulk is a map-backed bulk tier. Blobs are copied on the way in and out so
// callers cannot alias stored bytes.
type Bulk struct {
	mu      sync.RWMutex
	records map[string][]byte
	assets  map[string]types.CachedAsset
	closed  bool

	// Unsupported makes every call fail with storage.ErrUnsupported,
	// simulating an environment without a bulk store.
	Unsupported bool
}

var _ storage.BulkTier = (*Bulk)(nil)

// NewBulk returns an empty bulk tier.
func NewBulk() *Bulk {
	return &Bulk{
		records: make(map[string][]byte),
		assets:  make(map[string]types.CachedAsset),
	}
}

func (b *Bulk) usable() error {
	if b.Unsupported || b.closed {
		return storage.ErrUnsupported
	}
	return nil
}

func (b *Bulk) Ping(context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usable()
}

func (b *Bulk) GetRecord(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.usable(); err != nil {
		return nil, false, err
	}
	rec, ok := b.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), rec...), true, nil
}

func (b *Bulk) PutRecord(_ context.Context, key string, record []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	b.records[key] = append([]byte(nil), record...)
	return nil
}

func (b *Bulk) DeleteRecord(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	delete(b.records, key)
	return nil
}

func (b *Bulk) RecordKeys(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.usable(); err != nil {
		return nil, err
	}
	var out []string
	for k := range b.records {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *Bulk) GetAsset(_ context.Context, url string) (types.CachedAsset, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.usable(); err != nil {
		return types.CachedAsset{}, false, err
	}
	a, ok := b.assets[url]
	if !ok {
		return types.CachedAsset{}, false, nil
	}
	a.Blob = append([]byte(nil), a.Blob...)
	return a, true, nil
}

func (b *Bulk) PutAsset(_ context.Context, asset types.CachedAsset) error {
	if asset.URL == "" {
		return storage.ErrEmptyKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	asset.Blob = append([]byte(nil), asset.Blob...)
	b.assets[asset.URL] = asset
	return nil
}

func (b *Bulk) DeleteAsset(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	delete(b.assets, url)
	return nil
}

func (b *Bulk) ListAssets(context.Context) ([]types.AssetInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.usable(); err != nil {
		return nil, err
	}
	out := make([]types.AssetInfo, 0, len(b.assets))
	for _, a := range b.assets {
		out = append(out, a.Info())
	}
	return out, nil
}

func (b *Bulk) ClearAssets(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	b.assets = make(map[string]types.CachedAsset)
	return nil
}

// Close marks the tier unusable. Stored data is dropped.
func (b *Bulk) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.records = make(map[string][]byte)
	b.assets = make(map[string]types.CachedAsset)
	return nil
}
