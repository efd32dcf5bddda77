// Package lock provides locking.Locker implementations: an in-process keyed
// mutex for single-node deployments and a Redis lease for several nodes.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"vidaview/internal/app/locking"
)

const DefaultWait = 5 * time.Second

// Local is a keyed mutex. Waiters give up after Wait.
type Local struct {
	Wait time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocal(wait time.Duration) *Local {
	return &Local{Wait: wait}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)
	ctx, cancel := context.WithTimeout(ctx, waitOrDefault(l.Wait))
	defer cancel()
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, waitError(ctx)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
	}, nil
}

func (l *Local) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = make(map[string]*slot)
	}
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Local) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func waitOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultWait
	}
	return d
}

// waitError keeps caller cancellation distinct from a busy resource.
func waitError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return locking.ErrNotAcquired
	}
	return ctx.Err()
}

var _ locking.Locker = (*Local)(nil)
