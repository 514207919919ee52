package eviction

import "sort"

// Candidate is one evictable record as seen by a capacity scan.
type Candidate struct {
	Key       string
	Timestamp int64
	Size      int64
}

/*
TrimOldest picks the records to delete so that total drops to limit or below.

Candidates are ordered by write timestamp, oldest first, and taken until the
remaining total fits. This is age order, not access recency: nothing records
reads in the persistent tiers. The returned remaining total is what is left
once every victim is deleted.
*/
func TrimOldest(cands []Candidate, total, limit int64) (victims []Candidate, remaining int64) {
	if total <= limit {
		return nil, total
	}
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	remaining = total
	for _, c := range sorted {
		if remaining <= limit {
			break
		}
		victims = append(victims, c)
		remaining -= c.Size
	}
	return victims, remaining
}
