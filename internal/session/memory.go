package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps records in process memory. Records are lost on restart.
type MemoryStore struct {
	items *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a MemoryStore whose records expire after ttl of
// inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: gocache.New(ttl, ttl/2+time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	v, ok := s.items.Get(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	return v.(Record), nil
}

// Put stores rec and restarts its TTL. The record's medication map must not
// be mutated afterwards; the merge engine always returns a fresh map.
func (s *MemoryStore) Put(_ context.Context, id string, rec Record) error {
	s.items.Set(id, rec, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.items.Delete(id)
	return nil
}
