package eviction

import (
	"math/rand/v2"
	"sync"
)

// DefaultSweepProbability is the chance that a write also sweeps expired entries.
const DefaultSweepProbability = 0.1

/*
Trigger decides when cleanup runs. There is no timer: a sweep happens with a
small probability on qualifying writes, and unconditionally before a write
whose size estimate would overflow its tier. Full scans stay off the common
path while a full tier is still cleaned before it rejects data.
*/
type Trigger struct {
	// Probability of ShouldSweep returning true, in [0, 1].
	Probability float64

	// Rand returns a value in [0, 1). Tests replace it for determinism.
	Rand func() float64

	mu sync.Mutex
}

// NewTrigger returns a trigger firing with probability p.
func NewTrigger(p float64) *Trigger {
	return &Trigger{Probability: p, Rand: rand.Float64}
}

// ShouldSweep rolls the dice for one write.
func (t *Trigger) ShouldSweep() bool {
	if t == nil || t.Probability <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Rand() < t.Probability
}

// OverQuota reports whether adding incoming bytes to used would exceed quota.
// A non-positive quota means unlimited.
func OverQuota(used, incoming, quota int64) bool {
	return quota > 0 && used+incoming > quota
}
