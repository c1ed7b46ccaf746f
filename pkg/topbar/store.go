package topbar

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Store keeps live mounts in memory. When full, the least recently used
// mount is evicted.
type Store struct {
	mounts *lru.Cache[string, *Mount]
}

// NewStore returns a store holding at most capacity mounts.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1
	}

	// New only fails for a non-positive size.
	mounts, err := lru.New[string, *Mount](capacity)
	if err != nil {
		panic(err)
	}

	return &Store{mounts: mounts}
}

// Put adds m, evicting the least recently used mount over capacity.
func (s *Store) Put(m *Mount) {
	s.mounts.Add(m.ID, m)
}

// Get returns the mount with id and marks it as recently used.
func (s *Store) Get(id string) (*Mount, bool) {
	return s.mounts.Get(id)
}

// Len returns the number of live mounts.
func (s *Store) Len() int {
	return s.mounts.Len()
}
