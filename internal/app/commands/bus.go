package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Command is a write intent. Key must be constant for a type so the zero
// value can be used to route it.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd through bus and asserts the handler's result to R.
// A nil result yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, cmd.Key(), res, zero)
	}
	return value, nil
}

type route func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus routes by Key. Registration happens once at startup and is not
// guarded against concurrent dispatch.
type InMemoryBus struct {
	routes map[string]route
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: make(map[string]route)}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	r, ok := b.routes[cmd.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return r(ctx, cmd)
}

// Keys lists registered command keys, sorted.
func (b *InMemoryBus) Keys() []string {
	keys := make([]string, 0, len(b.routes))
	for k := range b.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register binds handler to the key of C. It panics on an empty or repeated
// key since both are wiring mistakes.
func Register[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	var zero C
	key := zero.Key()
	switch {
	case bus == nil:
		panic("commands: nil bus")
	case key == "":
		panic(fmt.Sprintf("commands: %T has an empty key", zero))
	}
	if _, exists := bus.routes[key]; exists {
		panic(fmt.Sprintf("commands: %q registered twice", key))
	}
	bus.routes[key] = func(ctx context.Context, raw Command) (any, error) {
		return handler.Handle(ctx, raw.(C))
	}
}
