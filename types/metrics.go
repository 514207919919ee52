package types

import "sync/atomic"

/*
Metrics receives one call per cache lifecycle event.
Both engines report through the same interface, so one implementation can
observe entry and asset traffic together.
*/
type Metrics interface {

	// Hit is called when a read returns fresh data.
	Hit()

	// Miss is called when a read finds nothing usable: absent, wrong version,
	// expired without revalidation, or unreadable.
	Miss()

	// Stale is called when an expired entry is served because the caller
	// asked for revalidation.
	Stale()

	// Eviction is called when a record is removed to stay under a capacity budget.
	Eviction()

	// Expire is called when a record is removed because it outlived its age limit.
	Expire()
}

// NoopMetrics ignores every event. Engines fall back to it when no Metrics
// is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Stale()    {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}

// Counters is a goroutine-safe Metrics that just counts.
type Counters struct {
	Hits      atomic.Int64
	Misses    atomic.Int64
	Stales    atomic.Int64
	Evictions atomic.Int64
	Expired   atomic.Int64
}

func (c *Counters) Hit()      { c.Hits.Add(1) }
func (c *Counters) Miss()     { c.Misses.Add(1) }
func (c *Counters) Stale()    { c.Stales.Add(1) }
func (c *Counters) Eviction() { c.Evictions.Add(1) }
func (c *Counters) Expire()   { c.Expired.Add(1) }
