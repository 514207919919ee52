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
	"github.com/krisalay/tiered-cache/api"
	"github.com/krisalay/tiered-cache/asset"
	"github.com/krisalay/tiered-cache/codec"
	"github.com/krisalay/tiered-cache/config"
	"github.com/krisalay/tiered-cache/engine"
	"github.com/krisalay/tiered-cache/expiration"
	"github.com/krisalay/tiered-cache/refresh"
	"github.com/krisalay/tiered-cache/types"
)

// ================= CLOCK =================

// demoClock lets the walkthrough jump past TTLs instead of sleeping minutes.
type demoClock struct {
	mu     sync.Mutex
	offset time.Duration
}

func (c *demoClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset)
}

func (c *demoClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.offset += d
	c.mu.Unlock()
	fmt.Printf("CLOCK  → +%v\n", d)
}

// ================= METRICS =================

type Metrics struct {
	types.Counters
}

func (m *Metrics) Print() {
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("HITS      : %d\n", m.Hits.Load())
	fmt.Printf("MISSES    : %d\n", m.Misses.Load())
	fmt.Printf("STALE     : %d\n", m.Stales.Load())
	fmt.Printf("EVICTIONS : %d\n", m.Evictions.Load())
	fmt.Printf("EXPIRED   : %d\n", m.Expired.Load())
}

type post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ================= MAIN =================

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

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("VERSION         :", cfg.Version)
	fmt.Println("FAST TIER       :", orMemory(cfg.FastPath))
	fmt.Println("BULK TIER       :", orMemory(cfg.BulkPath))
	fmt.Println("BULK THRESHOLD  :", cfg.BulkThreshold, "bytes")
	fmt.Println("CODEC           :", cfg.Codec)
	fmt.Println("ASSET POLICY    :", cfg.AssetMemoryPolicy, "/", cfg.AssetWritePolicy)

	// ---------------- Storage Tiers ----------------
	tiers, err := cfg.OpenTiers(ctx, logger)
	if err != nil {
		return err
	}
	defer tiers.Close()

	// ---------------- Cache Engine ----------------
	clock := &demoClock{}
	metrics := &Metrics{}
	hook := refresh.HookFunc(func(key, scope string, ent types.Entry) {
		fmt.Printf("HOOK   → stale %s (scope %q, strategy %s)\n", key, scope, ent.Strategy)
	})
	eng := engine.NewCacheEngine(expiration.NewPolicy(nil), hook, metrics, logger)
	eng.Clock = clock.Now
	eng.Trigger.Probability = cfg.CleanupProbability

	opts, cd, err := cfg.EntryOptions()
	if err != nil {
		return err
	}
	if z, ok := cd.(*codec.Zstd); ok {
		defer z.Close()
	}

	entries := cache.NewEntryCache(ctx, tiers.Fast, tiers.Bulk, eng, opts...)
	var store api.EntryStore = entries
	facade := cache.NewFacade(entries)
	fmt.Println("BULK ENABLED    :", entries.BulkEnabled())

	// ====================================================
	fmt.Println("\n==================== 1) CACHE MISS ====================")
	var feed []post
	fmt.Println("CACHE  → GET feed hit =", facade.Feed(ctx, "", &feed))

	// ====================================================
	fmt.Println("\n==================== 2) CACHE HIT ====================")
	facade.SetFeed(ctx, "", []post{{ID: 1, Title: "hello"}, {ID: 2, Title: "world"}})
	hit := facade.Feed(ctx, "", &feed)
	fmt.Println("CACHE  → GET feed hit =", hit, feed)

	// ====================================================
	fmt.Println("\n==================== 3) TTL EXPIRATION ====================")
	clock.Advance(3 * time.Minute)
	fmt.Println("CACHE  → GET feed hit =", facade.Feed(ctx, "", &feed))

	// ====================================================
	fmt.Println("\n==================== 4) STALE WHILE REVALIDATE ====================")
	l, ok := store.GetRaw(ctx, cache.KeyFeed, cache.Policy{Strategy: types.Short, Revalidate: true}, "")
	fmt.Printf("CACHE  → GET feed revalidate hit=%v stale=%v age=%v\n", ok, l.Stale, l.Age.Round(time.Second))

	// ====================================================
	fmt.Println("\n==================== 5) BULK TIER ====================")
	posts := make([]post, 2000)
	for i := range posts {
		posts[i] = post{ID: i, Title: strings.Repeat("p", 32)}
	}
	facade.SetUserPosts(ctx, "42", posts)
	l, ok = store.GetRaw(ctx, cache.KeyUserPosts, cache.Policy{Strategy: types.Medium}, "42")
	fmt.Printf("CACHE  → GET user_posts hit=%v tier=%s bytes=%d\n", ok, l.Tier, len(l.Data))

	// ====================================================
	fmt.Println("\n==================== 6) SCOPES ====================")
	facade.SetUserProfile(ctx, "42", map[string]string{"name": "ada"})
	facade.SetUserProfile(ctx, "43", map[string]string{"name": "alan"})
	facade.ForgetUser(ctx, "42")
	var profile map[string]string
	fmt.Println("CACHE  → GET user_profile(42) after logout =", facade.UserProfile(ctx, "42", &profile))
	fmt.Println("CACHE  → GET user_profile(43) after logout =", facade.UserProfile(ctx, "43", &profile), profile)

	// ====================================================
	fmt.Println("\n==================== 7) CLEANUP ====================")
	clock.Advance(2 * time.Hour)
	fmt.Println("CACHE  → swept entries =", store.CleanupOldCache(ctx))

	// ====================================================
	fmt.Println("\n==================== 8) ASSETS ====================")
	fetcher := types.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		fmt.Println("REMOTE → fetch:", url)
		return []byte("image:" + url), nil
	})
	assetOpts := append(cfg.AssetOptions(), asset.WithFetcher(fetcher), asset.WithMemoryEntries(3))
	var images api.AssetStore = asset.NewCache(ctx, tiers.Bulk, eng, assetOpts...)

	first, _ := images.PreloadAndCacheImage(ctx, "https://cdn.example/a.png")
	images.PreloadAndCacheImage(ctx, "https://cdn.example/a.png")
	for _, u := range []string{"b", "c", "d"} {
		images.CacheImage(ctx, "https://cdn.example/"+u+".png", []byte(u))
	}
	fmt.Println("ASSETS → first handle released =", first != nil && first.Released())
	st := images.GetCacheStats(ctx)
	fmt.Printf("ASSETS → memory=%d persisted=%d bytes=%d\n", st.MemoryCount, st.PersistedCount, st.TotalBytes)

	// ====================================================
	fmt.Println("\n==================== 9) VERSION BUMP ====================")
	facade.SetUserProfile(ctx, "43", map[string]string{"name": "alan"})
	fmt.Println("CACHE  → GET user_profile(43) before upgrade =", facade.UserProfile(ctx, "43", &profile))
	bumped := cache.NewEntryCache(ctx, tiers.Fast, tiers.Bulk, eng, append(opts, cache.WithVersion(cfg.Version+"-next"))...)
	fmt.Println("CACHE  → GET user_profile(43) after upgrade =",
		bumped.Decode(ctx, cache.KeyUserProfile, cache.Policy{Strategy: types.Long}, "43", &profile))

	// ====================================================
	metrics.Print()

	// ====================================================
	fmt.Println("\n==================== SHUTDOWN ====================")
	images.ClearImageCache(ctx)
	images.Close()
	bumped.ClearAll(ctx)
	fmt.Println("SYSTEM → cache closed cleanly")
	return nil
}

func orMemory(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}
