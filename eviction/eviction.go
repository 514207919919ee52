package eviction

import (
	"fmt"
	"strings"
)

/*
Policy decides which key leaves a bounded in-memory map when it is full.

The asset cache owns one Policy for its memory map and reports every
insertion, read and removal to it. The policy only tracks keys; the caller
does the actual deletion and releases whatever the key held.
*/
type Policy interface {

	// OnGet is called when a key is read. FIFO ignores it.
	OnGet(string)

	// OnPut is called when a key is inserted. Re-inserting a tracked key
	// keeps its original position.
	OnPut(string)

	// Remove forgets a key that was deleted explicitly.
	Remove(string)

	// Evict picks the next victim and stops tracking it. It returns "" when
	// nothing is tracked.
	Evict() string

	// Len is the number of tracked keys.
	Len() int
}

// PolicyType identifies a supported memory eviction order.
type PolicyType string

const (
	// FIFO evicts the earliest inserted key regardless of reads. This is the
	// default: it needs no bookkeeping on the read path.
	FIFO PolicyType = "FIFO"

	// LRU evicts the key read least recently. Opt-in only.
	LRU PolicyType = "LRU"
)

// ParsePolicyType accepts a policy name in any case.
func ParsePolicyType(name string) (PolicyType, error) {
	switch t := PolicyType(strings.ToUpper(strings.TrimSpace(name))); t {
	case "":
		return FIFO, nil
	case FIFO, LRU:
		return t, nil
	default:
		return "", fmt.Errorf("unknown eviction policy %q", name)
	}
}

// NewEvictionPolicy returns a fresh policy of type t. Unknown types get FIFO.
func NewEvictionPolicy(t PolicyType) Policy {
	if t == LRU {
		return newLRU()
	}
	return newFIFO()
}
