package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeLayout(t *testing.T) {
	n := New("")

	assert.Equal(t, "tc_g/feed", n.Compose("feed", ""))
	assert.Equal(t, "tc_u/42/user_posts", n.Compose("user_posts", "42"))
	assert.Equal(t, "tc_u/42/user_posts_timestamp", n.Marker(n.Compose("user_posts", "42")))
	assert.Equal(t, "tc_u/42/user_posts_meta", n.Meta(n.Compose("user_posts", "42")))
	assert.Equal(t, "tc_version", n.Version())
}

func TestScopePrefixDoesNotMatchOtherScopes(t *testing.T) {
	n := New("app_")

	short := n.ScopePrefix("u1")
	for _, other := range []string{"u12", "u1/2", "u1_2"} {
		key := n.Compose("feed", other)
		assert.False(t, strings.HasPrefix(key, short), "scope %q leaked into %q", other, "u1")
	}
	assert.False(t, strings.HasPrefix(n.Compose("feed", ""), short))
	assert.True(t, strings.HasPrefix(n.Compose("feed", "u1"), short))
}

func TestReserved(t *testing.T) {
	assert.True(t, Reserved("last_timestamp"))
	assert.True(t, Reserved("avatar_meta"))
	assert.False(t, Reserved("last"))
	assert.False(t, Reserved("meta_data"))
	assert.False(t, Reserved("timestamp"))
}

func TestFromMarker(t *testing.T) {
	n := New("")

	key, ok := n.FromMarker("tc_g/feed_timestamp")
	assert.True(t, ok)
	assert.Equal(t, "tc_g/feed", key)

	_, ok = n.FromMarker("tc_g/feed_meta")
	assert.False(t, ok)
	_, ok = n.FromMarker("other_feed_timestamp")
	assert.False(t, ok)
}
