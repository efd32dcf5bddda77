package support

import (
	"context"
	"errors"
	"log/slog"

	"vidaview/internal/domain/shared/code"
)

const DefaultCodeAttempts = 20

// CodeAllocator describes how a business code is drawn and how the store
// reports that it is already taken.
type CodeAllocator struct {
	Generator code.Generator
	Attempts  int
	Duplicate error
	Exhausted error
	Logger    *slog.Logger
}

// InsertWithUniqueCode builds an entity for a fresh code and inserts it,
// retrying while insert reports a.Duplicate. Uniqueness is enforced by the
// store, so two concurrent callers drawing the same code cannot both win.
func InsertWithUniqueCode[T any](
	ctx context.Context,
	a CodeAllocator,
	build func(code string) (T, error),
	insert func(ctx context.Context, entity T) error,
) (T, error) {
	var zero T
	attempts := a.Attempts
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		value, err := a.Generator.Next()
		if err != nil {
			return zero, err
		}
		entity, err := build(value)
		if err != nil {
			return zero, err
		}
		err = insert(ctx, entity)
		if err == nil {
			return entity, nil
		}
		if !errors.Is(err, a.Duplicate) {
			return zero, err
		}
		if a.Logger != nil {
			a.Logger.Debug("business code collision", "code", value, "attempt", attempt)
		}
	}
	return zero, a.Exhausted
}
