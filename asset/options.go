package asset

import (
	"time"

	"github.com/krisalay/tiered-cache/eviction"
	"github.com/krisalay/tiered-cache/types"
	"github.com/krisalay/tiered-cache/writepolicy"
)

const (
	// DefaultMaxAge is how long a persisted asset stays usable.
	DefaultMaxAge = 30 * 24 * time.Hour

	// DefaultMaxBytes caps the persisted asset store.
	DefaultMaxBytes = 100 << 20

	// DefaultMemoryEntries bounds the in-memory handle map.
	DefaultMemoryEntries = 50

	// DefaultWriteBuffer is the write-back queue size.
	DefaultWriteBuffer = 64
)

type settings struct {
	maxAge      time.Duration
	maxBytes    int64
	memEntries  int
	memPolicy   eviction.PolicyType
	writePolicy writepolicy.Type
	writeBuffer int
	fetcher     types.Fetcher
}

func defaults() settings {
	return settings{
		maxAge:      DefaultMaxAge,
		maxBytes:    DefaultMaxBytes,
		memEntries:  DefaultMemoryEntries,
		memPolicy:   eviction.FIFO,
		writePolicy: writepolicy.Through,
		writeBuffer: DefaultWriteBuffer,
	}
}

// Option configures a Cache.
type Option func(*settings)

func WithMaxAge(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithMaxBytes sets the persisted byte cap enforced by CleanupCache.
func WithMaxBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithMemoryEntries bounds the in-memory handle map.
func WithMemoryEntries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.memEntries = n
		}
	}
}

// WithMemoryPolicy selects the memory map eviction order. FIFO is the default.
func WithMemoryPolicy(t eviction.PolicyType) Option {
	return func(s *settings) { s.memPolicy = t }
}

// WithWritePolicy selects how records reach the store; buffer sizes the
// write-back queue and is ignored for write-through.
func WithWritePolicy(t writepolicy.Type, buffer int) Option {
	return func(s *settings) {
		s.writePolicy = t
		if buffer > 0 {
			s.writeBuffer = buffer
		}
	}
}

// WithFetcher replaces the HTTP fetcher used by PreloadAndCacheImage.
func WithFetcher(f types.Fetcher) Option {
	return func(s *settings) { s.fetcher = f }
}
