// This file defines the stale-read signal.
// The cache never refreshes anything itself. When a revalidating read serves
// expired data, it tells the hook, and the hook's owner decides whether to refetch.

package refresh

import "github.com/krisalay/tiered-cache/types"

/*
Hook is notified every time a revalidating read returns stale data.

OnStale runs on the read path, so it MUST return quickly. A typical hook
enqueues the key for the feature code that knows how to refetch it and then
call Set again.
*/
type Hook interface {
	OnStale(key, scope string, ent types.Entry)
}

// HookFunc adapts a plain function to Hook.
type HookFunc func(key, scope string, ent types.Entry)

func (f HookFunc) OnStale(key, scope string, ent types.Entry) { f(key, scope, ent) }
