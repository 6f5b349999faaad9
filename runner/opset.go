package runner

import (
	"slices"
	"sync"
)

// operationSet tracks the asynchronous operations one migration unit has
// issued but not yet completed. The unit is quiescent when the set is
// empty.
type operationSet struct {
	mu     sync.Mutex
	next   int
	active map[int]string // id -> label
}

func newOperationSet() *operationSet {
	return &operationSet{active: make(map[int]string)}
}

func (s *operationSet) track(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.active[id] = label

	return id
}

func (s *operationSet) done(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, id)
}

func (s *operationSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.active)
}

// outstanding returns the labels of active operations, sorted for stable
// log output.
func (s *operationSet) outstanding() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels := make([]string, 0, len(s.active))
	for _, l := range s.active {
		labels = append(labels, l)
	}

	slices.Sort(labels)

	return labels
}
