package queries

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Query is a read request routed by Key, which must not depend on field values.
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask runs query through bus and asserts the result to R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, query.Key(), res, zero)
	}
	return value, nil
}

type route func(ctx context.Context, q Query) (any, error)

type InMemoryBus struct {
	routes map[string]route
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: make(map[string]route)}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	r, ok := b.routes[query.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return r(ctx, query)
}

func (b *InMemoryBus) Keys() []string {
	keys := make([]string, 0, len(b.routes))
	for k := range b.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register binds handler to the key of Q and panics on empty or repeated keys.
func Register[Q Query, R any](bus *InMemoryBus, handler Handler[Q, R]) {
	var zero Q
	key := zero.Key()
	switch {
	case bus == nil:
		panic("queries: nil bus")
	case key == "":
		panic(fmt.Sprintf("queries: %T has an empty key", zero))
	}
	if _, exists := bus.routes[key]; exists {
		panic(fmt.Sprintf("queries: %q registered twice", key))
	}
	bus.routes[key] = func(ctx context.Context, raw Query) (any, error) {
		return handler.Handle(ctx, raw.(Q))
	}
}
