package memory

import (
	"context"
	"sync"
	"time"

	"vidaview/internal/app/middleware"
)

// IdempotencyStore keeps command outcomes for ttl, mirroring the TTL index
// of the Mongo store. A zero ttl keeps them forever.
type IdempotencyStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
		items: make(map[string]middleware.IdempotencyRecord),
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	if ok && s.expired(rec) {
		delete(s.items, key)
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, ok, nil
}

// Save stores rec and drops expired records on the way.
func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, old := range s.items {
		if s.expired(old) {
			delete(s.items, key)
		}
	}
	s.items[rec.Key] = rec
	return nil
}

func (s *IdempotencyStore) expired(rec middleware.IdempotencyRecord) bool {
	return s.ttl > 0 && s.now().Sub(rec.OccurredAt) > s.ttl
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
