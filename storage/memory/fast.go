// Package memory provides in-process implementations of both storage tiers.
//
// They back tests, and they are the fallback fast tier when no file is
// configured. Nothing here survives the process.
package memory

import (
	"sync"
	"sync/atomic"

	"github.com/krisalay/tiered-cache/storage"
)

// DefaultFastQuota mirrors the few megabytes a browser grants its
// synchronous storage.
const DefaultFastQuota = 5 << 20

/*
Fast is a copy-on-write fast tier.

Readers load an immutable map snapshot without locking. Writers hold mu,
build a new map, and swap it in atomically. Writes are comparatively rare
(one set writes at most three keys) while reads happen on every cache lookup.
*/
type Fast struct {
	data  atomic.Value // map[string]string
	size  atomic.Int64
	quota int64

	mu sync.Mutex
}

var _ storage.FastTier = (*Fast)(nil)

// NewFast returns an empty fast tier holding at most quota bytes.
// A non-positive quota selects DefaultFastQuota.
func NewFast(quota int64) *Fast {
	if quota <= 0 {
		quota = DefaultFastQuota
	}
	f := &Fast{quota: quota}
	f.data.Store(map[string]string{})
	return f
}

// Seed returns a fast tier preloaded with values, ignoring the quota. It is
// used to restore a persisted snapshot.
func Seed(quota int64, values map[string]string) *Fast {
	f := NewFast(quota)
	m := make(map[string]string, len(values))
	var size int64
	for k, v := range values {
		m[k] = v
		size += entrySize(k, v)
	}
	f.data.Store(m)
	f.size.Store(size)
	return f
}

func (f *Fast) snapshot() map[string]string {
	return f.data.Load().(map[string]string)
}

func (f *Fast) Get(key string) (string, bool) {
	v, ok := f.snapshot()[key]
	return v, ok
}

// Set replaces key. The write is rejected with a quota error when the
// resulting size would exceed the quota.
func (f *Fast) Set(key, value string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	old := f.snapshot()
	size := f.size.Load() + entrySize(key, value)
	if prev, ok := old[key]; ok {
		size -= entrySize(key, prev)
	}
	if size > f.quota {
		return storage.QuotaExceeded(key, entrySize(key, value), f.quota)
	}

	n := make(map[string]string, len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[key] = value
	f.data.Store(n)
	f.size.Store(size)
	return nil
}

func (f *Fast) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	old := f.snapshot()
	prev, ok := old[key]
	if !ok {
		return
	}
	n := make(map[string]string, len(old))
	for k, v := range old {
		if k != key {
			n[k] = v
		}
	}
	f.data.Store(n)
	f.size.Add(-entrySize(key, prev))
}

func (f *Fast) Keys() []string {
	m := f.snapshot()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Snapshot returns a copy of every stored pair.
func (f *Fast) Snapshot() map[string]string {
	m := f.snapshot()
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *Fast) Size() int64  { return f.size.Load() }
func (f *Fast) Quota() int64 { return f.quota }

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
