package writepolicy

import (
	"context"
	"fmt"
	"strings"

	"github.com/krisalay/tiered-cache/types"
)

/*
WritePolicy decides how an asset record reaches the bulk tier.

The asset cache has already placed the blob in its memory map when OnWrite
is called, so readers in this process see it at once. The policy only
governs persistence. done runs after the record was handed to the store
(whether or not the store accepted it) and is where the cache hangs its
size cleanup.
*/
type WritePolicy interface {
	OnWrite(ctx context.Context, asset types.CachedAsset, done func(context.Context))

	// Close flushes pending writes and stops background work.
	Close()
}

// Type names a write policy in configuration.
type Type string

const (
	Through Type = "through"
	Back    Type = "back"
)

// ParseType accepts a policy name in any case.
func ParseType(name string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(name))); t {
	case "":
		return Through, nil
	case Through, Back:
		return t, nil
	default:
		return "", fmt.Errorf("unknown write policy %q", name)
	}
}
