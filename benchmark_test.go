package cache_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	cache "github.com/krisalay/tiered-cache"
	"github.com/krisalay/tiered-cache/engine"
	"github.com/krisalay/tiered-cache/storage/memory"
	"github.com/krisalay/tiered-cache/types"
)

func newBenchmarkCache() *cache.EntryCache {
	eng := engine.NewCacheEngine(nil, nil, nil, nil)
	return cache.NewEntryCache(
		context.Background(),
		memory.NewFast(64<<20),
		memory.NewBulk(),
		eng,
		cache.WithBulkThreshold(4<<10),
	)
}

var benchPolicy = cache.Policy{Strategy: types.Medium}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkCacheGetHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache()

	c.Set(ctx, "key", "value", benchPolicy, "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetRaw(ctx, "key", benchPolicy, "")
	}
}

func BenchmarkCacheGetMiss(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("miss-%d", i)
		c.GetRaw(ctx, key, benchPolicy, "")
	}
}

func BenchmarkCacheGetBulkHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache()

	c.Set(ctx, "big", strings.Repeat("x", 16<<10), benchPolicy, "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetRaw(ctx, "big", benchPolicy, "")
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkCacheParallelGet(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache()

	for i := 0; i < 1000; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), i, benchPolicy, "")
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.GetRaw(ctx, "key-42", benchPolicy, "")
		}
	})
}

//
// ================= WRITE BENCH =================
//

// Writes cycle over a fixed key set: the in-memory fast tier copies its map
// on every write, so an ever-growing key set would measure that copy.
func BenchmarkCacheSet(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i%1000), i, benchPolicy, "")
	}
}

//
// ================= HIGH CONCURRENCY TEST =================
//

func BenchmarkCacheHighConcurrency(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache()

	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		c.Set(ctx, keys[i], i, benchPolicy, "")
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				c.GetRaw(ctx, keys[j%len(keys)], benchPolicy, fmt.Sprint(id%4))
			}
		}(i)
	}
	wg.Wait()
}
