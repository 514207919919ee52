// Package keys builds storage keys so cache entries never leak across scopes.
package keys

import (
	"net/url"
	"strings"
)

const (
	// DefaultGlobalPrefix is the prefix every key of the subsystem starts with.
	DefaultGlobalPrefix = "tc_"

	// MarkerSuffix is appended to a key to form its freshness marker.
	MarkerSuffix = "_timestamp"

	// MetaSuffix is appended to a key to form its tier sidecar.
	MetaSuffix = "_meta"

	globalScope = "g/"
	userScope   = "u/"
	versionKey  = "version"
)

/*
Namespacer composes <globalPrefix><scopePrefix><resourceKey>.

Scoped keys live under "u/<escaped scope>/" and unscoped keys under "g/".
The scope is path-escaped so that no scope's prefix is a prefix of another
scope's keys ("u1" never matches "u1/2"'s entries).
*/
type Namespacer struct {
	global string
}

// New returns a namespacer using global as the subsystem prefix. An empty
// prefix selects DefaultGlobalPrefix.
func New(global string) Namespacer {
	if global == "" {
		global = DefaultGlobalPrefix
	}
	return Namespacer{global: global}
}

// Global is the subsystem prefix shared by every key.
func (n Namespacer) Global() string { return n.global }

// ScopePrefix returns the prefix shared by every key owned by scope.
func (n Namespacer) ScopePrefix(scope string) string {
	if scope == "" {
		return n.global + globalScope
	}
	return n.global + userScope + url.PathEscape(scope) + "/"
}

// Reserved reports whether resource ends in a sibling suffix. Such a key
// would share storage with another entry's marker or sidecar.
func Reserved(resource string) bool {
	return strings.HasSuffix(resource, MarkerSuffix) || strings.HasSuffix(resource, MetaSuffix)
}

// Compose returns the storage key for resource under scope.
func (n Namespacer) Compose(resource, scope string) string {
	return n.ScopePrefix(scope) + resource
}

// Marker returns the freshness marker key of a composed key.
func (n Namespacer) Marker(key string) string { return key + MarkerSuffix }

// Meta returns the tier sidecar key of a composed key.
func (n Namespacer) Meta(key string) string { return key + MetaSuffix }

// Version is the key of the persisted schema version marker.
func (n Namespacer) Version() string { return n.global + versionKey }

// Owns reports whether key belongs to the subsystem.
func (n Namespacer) Owns(key string) bool { return strings.HasPrefix(key, n.global) }

// FromMarker returns the composed key a marker belongs to.
func (n Namespacer) FromMarker(marker string) (string, bool) {
	if !n.Owns(marker) || !strings.HasSuffix(marker, MarkerSuffix) {
		return "", false
	}
	return strings.TrimSuffix(marker, MarkerSuffix), true
}
