// This file defines how long cached records stay usable.

package expiration

import (
	"time"

	"github.com/krisalay/tiered-cache/types"
)

// SweepFactor is how many TTLs an entry may outlive before cleanup deletes it.
// Between one and SweepFactor TTLs an entry is stale: unreadable by ordinary
// reads, still served to revalidating reads.
const SweepFactor = 2

/*
Policy maps strategies to TTLs and answers the freshness questions both
engines ask. Expiry is measured from the write timestamp only; reads never
extend an entry's life, because records are never rewritten on read.
*/
type Policy struct {
	ttls map[types.Strategy]time.Duration
}

// NewPolicy returns a policy using types.DefaultTTLs overlaid with overrides.
func NewPolicy(overrides map[types.Strategy]time.Duration) *Policy {
	ttls := make(map[types.Strategy]time.Duration, len(types.DefaultTTLs))
	for s, d := range types.DefaultTTLs {
		ttls[s] = d
	}
	for s, d := range overrides {
		if s != types.None && d > 0 {
			ttls[s] = d
		}
	}
	return &Policy{ttls: ttls}
}

// TTL returns the lifetime for s. A positive override wins over the table.
// Unknown strategies fall back to Short.
func (p *Policy) TTL(s types.Strategy, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if d, ok := p.ttls[s]; ok {
		return d
	}
	return p.ttls[types.Short]
}

// Age returns how old a record written at ts (unix ms) is at now.
func Age(ts int64, now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(ts))
}

// IsFresh reports whether a record written at ts is younger than ttl.
func IsFresh(ts int64, now time.Time, ttl time.Duration) bool {
	return Age(ts, now) < ttl
}

// IsSweepable reports whether a record written at ts has outlived
// SweepFactor times ttl.
func IsSweepable(ts int64, now time.Time, ttl time.Duration) bool {
	return Age(ts, now) > SweepFactor*ttl
}
