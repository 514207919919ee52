package cache

import (
	"context"

	"github.com/krisalay/tiered-cache/types"
)

// Resource keys used by the Facade.
const (
	KeyFeed        = "feed"
	KeyUserPosts   = "user_posts"
	KeyUserStats   = "user_stats"
	KeyUserProfile = "user_profile"
)

/*
Facade is the domain-named surface over an EntryCache.
Each accessor pins the key and strategy so callers cannot mix them up.
Getters decode into out (a pointer) and report whether they hit.
*/
type Facade struct {
	entries *EntryCache
}

func NewFacade(entries *EntryCache) *Facade {
	return &Facade{entries: entries}
}

// Entries returns the underlying cache.
func (f *Facade) Entries() *EntryCache { return f.entries }

// Feed reads the feed seen by viewer. An empty viewer is the public feed.
func (f *Facade) Feed(ctx context.Context, viewer string, out any) bool {
	return f.get(ctx, KeyFeed, types.Short, viewer, out)
}

func (f *Facade) SetFeed(ctx context.Context, viewer string, feed any) {
	f.set(ctx, KeyFeed, types.Short, viewer, feed)
}

func (f *Facade) UserPosts(ctx context.Context, userID string, out any) bool {
	return f.get(ctx, KeyUserPosts, types.Medium, userID, out)
}

func (f *Facade) SetUserPosts(ctx context.Context, userID string, posts any) {
	f.set(ctx, KeyUserPosts, types.Medium, userID, posts)
}

func (f *Facade) UserStats(ctx context.Context, userID string, out any) bool {
	return f.get(ctx, KeyUserStats, types.Short, userID, out)
}

func (f *Facade) SetUserStats(ctx context.Context, userID string, stats any) {
	f.set(ctx, KeyUserStats, types.Short, userID, stats)
}

func (f *Facade) UserProfile(ctx context.Context, userID string, out any) bool {
	return f.get(ctx, KeyUserProfile, types.Long, userID, out)
}

func (f *Facade) SetUserProfile(ctx context.Context, userID string, profile any) {
	f.set(ctx, KeyUserProfile, types.Long, userID, profile)
}

// ForgetUser drops everything cached for userID, e.g. on logout.
func (f *Facade) ForgetUser(ctx context.Context, userID string) {
	f.entries.ClearUserCache(ctx, userID)
}

func (f *Facade) get(ctx context.Context, key string, s types.Strategy, scope string, out any) bool {
	return f.entries.Decode(ctx, key, Policy{Strategy: s}, scope, out)
}

func (f *Facade) set(ctx context.Context, key string, s types.Strategy, scope string, v any) {
	f.entries.Set(ctx, key, v, Policy{Strategy: s}, scope)
}
