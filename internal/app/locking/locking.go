// Package locking serializes work on a shared resource such as an apartment.
package locking

import (
	"context"
	"sync"

	"vidaview/internal/domain/shared/errs"
)

// ErrNotAcquired is returned when a lock could not be taken before the wait expired.
var ErrNotAcquired = errs.Conflict("locking: resource busy, retry later")

// Locker acquires an exclusive lock on key and returns its release func.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ApartmentKey and RatingKey name the locks used by the ledger handlers.
func ApartmentKey(id string) string { return "apartment:" + id }
func RatingKey(id string) string    { return "rating:" + id }

type scopeKey struct{}

// Scope collects releases so locks outlive the handler until the command's
// transaction has committed.
type Scope struct {
	mu       sync.Mutex
	releases []func()
}

func WithScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// Close releases held locks in reverse acquisition order.
func (s *Scope) Close() {
	s.mu.Lock()
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()
	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// Hold acquires key. With a Scope in ctx the release is deferred to Scope.Close
// and the returned func is a no-op; otherwise the caller releases directly.
// A nil locker holds nothing.
func Hold(ctx context.Context, l Locker, key string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	release, err := l.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s != nil {
		s.mu.Lock()
		s.releases = append(s.releases, release)
		s.mu.Unlock()
		return func() {}, nil
	}
	return release, nil
}
