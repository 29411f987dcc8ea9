package record

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store keyed by owner. It is safe for
// concurrent use and returns copies of the stored slices.
type MemoryStore[P any] struct {
	mu      sync.RWMutex
	records map[string][]Record[P]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[P any]() *MemoryStore[P] {
	return &MemoryStore[P]{records: make(map[string][]Record[P])}
}

// Put appends records to an owner's collection. A record with an id that is
// already present replaces the earlier one in place.
func (s *MemoryStore[P]) Put(owner string, recs ...Record[P]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.records[owner]
	for _, r := range recs {
		idx := slices.IndexFunc(list, func(e Record[P]) bool { return e.ID == r.ID })
		if idx >= 0 {
			list[idx] = r
			continue
		}
		list = append(list, r)
	}
	s.records[owner] = list
}

// List returns a copy of the owner's records. Unknown owners yield an empty list.
func (s *MemoryStore[P]) List(ctx context.Context, owner string) ([]Record[P], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records[owner]), nil
}

// Close does nothing for the memory store.
func (s *MemoryStore[P]) Close() error { return nil }

var _ Store[Attributes] = (*MemoryStore[Attributes])(nil)
