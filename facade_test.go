package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/tiered-cache"
)

type profile struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func TestFacadeAccessors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	fc := cache.NewFacade(f.cache)

	fc.SetFeed(ctx, "", []item{{ID: 1}, {ID: 2}})
	fc.SetUserPosts(ctx, "42", []item{{ID: 7}})
	fc.SetUserStats(ctx, "42", map[string]int{"followers": 10})
	fc.SetUserProfile(ctx, "42", profile{Name: "ada", Bio: "math"})

	var feed []item
	require.True(t, fc.Feed(ctx, "", &feed))
	assert.Equal(t, []item{{ID: 1}, {ID: 2}}, feed)

	var posts []item
	require.True(t, fc.UserPosts(ctx, "42", &posts))
	assert.Equal(t, []item{{ID: 7}}, posts)

	var stats map[string]int
	require.True(t, fc.UserStats(ctx, "42", &stats))
	assert.Equal(t, 10, stats["followers"])

	var p profile
	require.True(t, fc.UserProfile(ctx, "42", &p))
	assert.Equal(t, "ada", p.Name)

	assert.False(t, fc.UserPosts(ctx, "7", &posts), "other users see nothing")
}

func TestFacadeStrategies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	fc := cache.NewFacade(f.cache)

	fc.SetUserStats(ctx, "42", 1)
	fc.SetUserPosts(ctx, "42", 2)
	fc.SetUserProfile(ctx, "42", profile{Name: "ada"})

	// SHORT is 2m, MEDIUM 10m, LONG 60m.
	f.clock.Advance(3 * time.Minute)
	var n int
	assert.False(t, fc.UserStats(ctx, "42", &n))
	assert.True(t, fc.UserPosts(ctx, "42", &n))

	f.clock.Advance(10 * time.Minute)
	assert.False(t, fc.UserPosts(ctx, "42", &n))
	var p profile
	assert.True(t, fc.UserProfile(ctx, "42", &p))
}

func TestFacadeForgetUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	fc := cache.NewFacade(f.cache)

	fc.SetUserProfile(ctx, "42", profile{Name: "ada"})
	fc.SetUserProfile(ctx, "43", profile{Name: "alan"})
	fc.SetFeed(ctx, "", []item{{ID: 1}})

	fc.ForgetUser(ctx, "42")

	var p profile
	assert.False(t, fc.UserProfile(ctx, "42", &p))
	assert.True(t, fc.UserProfile(ctx, "43", &p))
	var feed []item
	assert.True(t, fc.Feed(ctx, "", &feed))
}

func TestFacadeDecodeMismatchIsMiss(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	fc := cache.NewFacade(f.cache)

	fc.SetUserStats(ctx, "42", "not a number")
	var n int
	assert.False(t, fc.UserStats(ctx, "42", &n))
}
