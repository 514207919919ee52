package asset

import (
	"strconv"
	"sync"
	"sync/atomic"
)

var handleSeq atomic.Uint64

/*
Handle is a transient in-process reference to a cached blob.

It stands in for an object URL: cheap to hand to renderers, and it has to be
released once the cache drops it. After Release, Bytes returns nil and URL
keeps returning the same identifier so stale references are easy to spot.
*/
type Handle struct {
	source string
	id     string

	mu       sync.RWMutex
	blob     []byte
	released bool
}

func newHandle(source string, blob []byte) *Handle {
	return &Handle{
		source: source,
		id:     "blob:tiered-cache/" + strconv.FormatUint(handleSeq.Add(1), 10),
		blob:   blob,
	}
}

// URL is the handle's own identifier, unique within the process.
func (h *Handle) URL() string { return h.id }

// Source is the remote URL the blob was cached under.
func (h *Handle) Source() string { return h.source }

// Bytes returns the blob. Callers must not modify it.
func (h *Handle) Bytes() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.blob
}

// Size is the blob length, zero once released.
func (h *Handle) Size() int64 {
	return int64(len(h.Bytes()))
}

// Release drops the blob reference. Releasing twice is harmless.
func (h *Handle) Release() {
	h.mu.Lock()
	h.blob = nil
	h.released = true
	h.mu.Unlock()
}

// Released reports whether Release was called.
func (h *Handle) Released() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}
