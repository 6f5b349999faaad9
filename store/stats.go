package store

import "sync"

// Kind classifies a single intercepted mutation.
type Kind string

const (
	KindCreated Kind = "created"
	KindSet     Kind = "set"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
	KindAdded   Kind = "added"
)

// Counts is a point-in-time snapshot of per-kind mutation counters.
type Counts struct {
	Created int
	Set     int
	Updated int
	Deleted int
	Added   int
}

// Total returns the sum of all per-kind counters.
func (c Counts) Total() int {
	return c.Created + c.Set + c.Updated + c.Deleted + c.Added
}

// Stats accumulates mutation counters for one run. Counting can be frozen
// while the engine's own bookkeeping writes (the ledger append) pass
// through the intercepted surface.
type Stats struct {
	mu     sync.Mutex
	frozen bool
	counts Counts
}

// Freeze suspends counting until [Stats.Unfreeze] is called.
func (s *Stats) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frozen = true
}

// Unfreeze resumes counting.
func (s *Stats) Unfreeze() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frozen = false
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts
}

func (s *Stats) count(k Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return
	}

	switch k {
	case KindCreated:
		s.counts.Created++
	case KindSet:
		s.counts.Set++
	case KindUpdated:
		s.counts.Updated++
	case KindDeleted:
		s.counts.Deleted++
	case KindAdded:
		s.counts.Added++
	}
}
