package types

import (
	"encoding/json"
	"time"
)

// Policy carries the per-call caching choices of a Set or Get.
type Policy struct {
	Strategy Strategy

	// ForceRefresh makes a read miss unconditionally so the caller refetches.
	ForceRefresh bool

	// Revalidate lets a read return expired data instead of missing.
	Revalidate bool

	// MaxAge, when positive, replaces the strategy's TTL for this read.
	MaxAge time.Duration
}

// Lookup is a successful read.
type Lookup struct {
	Data json.RawMessage

	// Stale is set when Data outlived its TTL and was served only because
	// the read asked for revalidation. The caller should refetch and Set.
	Stale bool

	Age  time.Duration
	Tier Tier
}
