package docstore

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps collections in process memory. Documents are copied on the way in and out.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Insert(_ context.Context, collection, id string, doc []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, ok := c[id]; ok {
		return false, nil
	}
	c[id] = clone(doc)
	return true, nil
}

func (s *MemoryStore) Replace(_ context.Context, collection, id string, doc []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, ok := c[id]; !ok {
		return false, nil
	}
	c[id] = clone(doc)
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	return clone(doc), true, nil
}

func (s *MemoryStore) GetMany(_ context.Context, collection string, ids []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(ids))
	for _, id := range ids {
		if doc, ok := s.collections[collection][id]; ok {
			out[id] = clone(doc)
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection string, ids ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := c[id]; ok {
			delete(c, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (s *MemoryStore) Scan(_ context.Context, collection string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		out[id] = clone(doc)
	}
	return out, nil
}

// collection must be called with the write lock held.
func (s *MemoryStore) collection(name string) map[string][]byte {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string][]byte)
		s.collections[name] = c
	}
	return c
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
