package types

import (
	"fmt"
	"strings"
	"time"
)

// Strategy is a named TTL policy attached to a cache write.
type Strategy string

const (
	// Immediate is for data that goes stale almost at once (feeds, counters).
	Immediate Strategy = "IMMEDIATE"

	Short  Strategy = "SHORT"
	Medium Strategy = "MEDIUM"
	Long   Strategy = "LONG"

	// None disables caching for the call.
	None Strategy = "NONE"
)

// DefaultTTLs maps every caching strategy to its time-to-live.
var DefaultTTLs = map[Strategy]time.Duration{
	Immediate: 1 * time.Minute,
	Short:     2 * time.Minute,
	Medium:    10 * time.Minute,
	Long:      60 * time.Minute,
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case Immediate, Short, Medium, Long, None:
		return true
	}
	return false
}

// ParseStrategy accepts a strategy name in any case.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToUpper(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown cache strategy %q", name)
	}
	return s, nil
}
