package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	cache "github.com/krisalay/tiered-cache"
	"github.com/krisalay/tiered-cache/config"
	"github.com/krisalay/tiered-cache/engine"
	"github.com/krisalay/tiered-cache/types"
)

// ================= BENCHMARK =================

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ---------------- Load Config ----------------
	const (
		scopes      = 8
		preloadKeys = 500
		largeEvery  = 50
		goroutines  = 200
		opsPerG     = 5000
	)

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Fast Tier    :", cfg.FastPath, "(quota", cfg.FastQuota, "bytes)")
	fmt.Println("Bulk Tier    :", cfg.BulkPath)
	fmt.Println("Codec        :", cfg.Codec)
	fmt.Println("Scopes       :", scopes)
	fmt.Println("Preload Keys :", preloadKeys)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("---------------------------------")

	// ---------------- Storage Tiers ----------------
	tiers, err := cfg.OpenTiers(ctx, logger)
	if err != nil {
		return err
	}
	defer tiers.Close()

	// ---------------- Cache Engine ----------------
	metrics := &types.Counters{}
	eng := engine.NewCacheEngine(nil, nil, metrics, logger)
	eng.Trigger.Probability = cfg.CleanupProbability

	opts, _, err := cfg.EntryOptions()
	if err != nil {
		return err
	}
	c := cache.NewEntryCache(ctx, tiers.Fast, tiers.Bulk, eng, opts...)
	p := cache.Policy{Strategy: types.Medium}

	// ---------------- Preload Cache ----------------
	fmt.Println("Preloading cache...")
	large := strings.Repeat("x", cfg.BulkThreshold+1)
	for s := 0; s < scopes; s++ {
		scope := fmt.Sprint(s)
		for i := 0; i < preloadKeys/scopes; i++ {
			var v any = i
			if i%largeEvery == 0 {
				v = large
			}
			c.Set(ctx, fmt.Sprintf("key-%d", i), v, p, scope)
		}
	}
	fmt.Println("Preload complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			scope := fmt.Sprint(id % scopes)
			for j := 0; j < opsPerG; j++ {
				key := fmt.Sprintf("key-%d", j%(preloadKeys/scopes))
				if j%100 == 0 {
					c.Set(ctx, key, j, p, scope)
					continue
				}
				c.GetRaw(ctx, key, p, scope)
			}
		}(i)
	}

	wg.Wait()

	duration := time.Since(start)
	totalOps := goroutines * opsPerG

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Hits / Misses    : %d / %d\n", metrics.Hits.Load(), metrics.Misses.Load())
	fmt.Printf("Evictions        : %d\n", metrics.Evictions.Load())
	fmt.Println("=========================================")

	c.ClearAll(ctx)
	return nil
}
