package types

import "encoding/json"

// Tier names the storage tier that holds a record.
type Tier string

const (
	// TierFast is the small synchronous key/value store.
	TierFast Tier = "fast"

	// TierBulk is the larger asynchronous structured store.
	TierBulk Tier = "bulk"
)

/*
Entry is one versioned, timestamped cached record.

Entries are replaced wholesale on every write and never mutated in place.
An entry whose Version differs from the engine's current schema version is
treated as if it did not exist.
*/
type Entry struct {
	// Data is the caller payload as JSON. When Compressed is set it holds a
	// JSON string with the codec-encoded payload instead.
	Data json.RawMessage `json:"data"`

	// Timestamp is the write time in unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	Version  string   `json:"version"`
	Strategy Strategy `json:"strategy"`

	// Compressed reports whether Data went through a non-identity codec.
	Compressed bool `json:"compressed,omitempty"`
}

// StorageMeta is the sidecar written next to entries stored in the bulk tier
// so readers know which tier to consult without probing both.
type StorageMeta struct {
	Tier      Tier     `json:"tier"`
	Timestamp int64    `json:"timestamp"`
	Strategy  Strategy `json:"strategy"`
}
