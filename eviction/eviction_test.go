package eviction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOEvictsInInsertionOrder(t *testing.T) {
	p := NewEvictionPolicy(FIFO)
	p.OnPut("a")
	p.OnPut("b")
	p.OnPut("c")
	p.OnGet("a")
	p.OnPut("a")

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "b", p.Evict())

	p.Remove("c")
	assert.Equal(t, "", p.Evict())
	assert.Equal(t, 0, p.Len())
}

func TestLRUEvictsLeastRecentlyRead(t *testing.T) {
	p := NewEvictionPolicy(LRU)
	p.OnPut("a")
	p.OnPut("b")
	p.OnPut("c")
	p.OnGet("a")

	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "c", p.Evict())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestParsePolicyType(t *testing.T) {
	got, err := ParsePolicyType("lru")
	require.NoError(t, err)
	assert.Equal(t, LRU, got)

	got, err = ParsePolicyType("")
	require.NoError(t, err)
	assert.Equal(t, FIFO, got)

	_, err = ParsePolicyType("LFU")
	assert.Error(t, err)
}

func TestTriggerProbability(t *testing.T) {
	tr := NewTrigger(0.1)
	tr.Rand = func() float64 { return 0.05 }
	assert.True(t, tr.ShouldSweep())

	tr.Rand = func() float64 { return 0.5 }
	assert.False(t, tr.ShouldSweep())

	assert.False(t, NewTrigger(0).ShouldSweep())

	var nilTrigger *Trigger
	assert.False(t, nilTrigger.ShouldSweep())
}

func TestOverQuota(t *testing.T) {
	assert.False(t, OverQuota(90, 10, 100))
	assert.True(t, OverQuota(91, 10, 100))
	assert.False(t, OverQuota(1<<40, 1, 0))
}

func TestTrimOldest(t *testing.T) {
	cands := []Candidate{
		{Key: "new", Timestamp: 300, Size: 40},
		{Key: "old", Timestamp: 100, Size: 30},
		{Key: "mid", Timestamp: 200, Size: 30},
	}

	victims, remaining := TrimOldest(cands, 100, 50)
	require.Len(t, victims, 2)
	assert.Equal(t, "old", victims[0].Key)
	assert.Equal(t, "mid", victims[1].Key)
	assert.Equal(t, int64(40), remaining)

	victims, remaining = TrimOldest(cands, 100, 100)
	assert.Empty(t, victims)
	assert.Equal(t, int64(100), remaining)
}
