package expiration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krisalay/tiered-cache/types"
)

func TestPolicyTTL(t *testing.T) {
	p := NewPolicy(map[types.Strategy]time.Duration{types.Long: 2 * time.Hour, types.None: time.Hour})

	assert.Equal(t, time.Minute, p.TTL(types.Immediate, 0))
	assert.Equal(t, 2*time.Minute, p.TTL(types.Short, 0))
	assert.Equal(t, 10*time.Minute, p.TTL(types.Medium, 0))
	assert.Equal(t, 2*time.Hour, p.TTL(types.Long, 0))
	assert.Equal(t, 5*time.Second, p.TTL(types.Long, 5*time.Second))
	assert.Equal(t, 2*time.Minute, p.TTL("BOGUS", 0))
}

func TestFreshStaleSweepable(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	ttl := time.Minute

	written := now.Add(-30 * time.Second).UnixMilli()
	assert.True(t, IsFresh(written, now, ttl))
	assert.False(t, IsSweepable(written, now, ttl))

	written = now.Add(-90 * time.Second).UnixMilli()
	assert.False(t, IsFresh(written, now, ttl))
	assert.False(t, IsSweepable(written, now, ttl))

	written = now.Add(-3 * time.Minute).UnixMilli()
	assert.True(t, IsSweepable(written, now, ttl))

	// Exactly one TTL old is already expired.
	assert.False(t, IsFresh(now.Add(-ttl).UnixMilli(), now, ttl))
}
