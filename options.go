package cache

import (
	"github.com/krisalay/tiered-cache/codec"
	"github.com/krisalay/tiered-cache/keys"
)

// Option configures an EntryCache.
type Option func(*EntryCache)

// WithVersion sets the schema version. Changing it between runs wipes the cache.
func WithVersion(v string) Option {
	return func(c *EntryCache) {
		if v != "" {
			c.version = v
		}
	}
}

// WithGlobalPrefix sets the prefix every key of the subsystem starts with.
func WithGlobalPrefix(prefix string) Option {
	return func(c *EntryCache) { c.keys = keys.New(prefix) }
}

// WithBulkThreshold sets the serialized size above which records go to the bulk tier.
func WithBulkThreshold(n int) Option {
	return func(c *EntryCache) {
		if n > 0 {
			c.bulkThreshold = n
		}
	}
}

// WithCodec sets the payload codec.
func WithCodec(cd codec.Codec) Option {
	return func(c *EntryCache) {
		if cd != nil {
			c.codec = cd
		}
	}
}
