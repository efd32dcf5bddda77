package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work in context")

// ContextBinder is implemented by units whose repositories read transaction
// state, such as a Mongo session, from the context.
type ContextBinder interface {
	InjectContext(ctx context.Context) context.Context
}

type ctxKey struct{}

// Attach returns ctx carrying unit and, when the unit has one, its session.
func Attach(ctx context.Context, unit UnitOfWork) context.Context {
	if binder, ok := unit.(ContextBinder); ok {
		ctx = binder.InjectContext(ctx)
	}
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}
