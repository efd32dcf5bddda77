package support

import (
	"context"

	"vidaview/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit in ctx or opens a read-only one. The
// returned cleanup is nil when the unit belongs to the caller.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Attach(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// WriteUnit is a unit of work that a handler may or may not own.
type WriteUnit struct {
	uow.UnitOfWork
	Ctx       context.Context
	managed   bool
	committed bool
	releases  []func()
}

// BeginWriteUnit reuses the unit placed in ctx by the transaction middleware,
// or starts one owned by the handler when called directly.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (*WriteUnit, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{UnitOfWork: unit, Ctx: ctx}, nil
	}
	if factory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &WriteUnit{UnitOfWork: unit, Ctx: uow.Attach(ctx, unit), managed: true}, nil
}

// Finish commits a handler-owned unit; units owned by the caller are left alone.
func (w *WriteUnit) Finish() error {
	if !w.managed {
		return nil
	}
	if err := w.Commit(w.Ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// OnRelease registers fn to run when the unit is released, after any rollback.
func (w *WriteUnit) OnRelease(fn func()) {
	if fn != nil {
		w.releases = append(w.releases, fn)
	}
}

// Release rolls back a handler-owned unit that was not committed, then runs
// the OnRelease hooks in reverse order.
func (w *WriteUnit) Release() {
	if w.managed && !w.committed {
		_ = w.Rollback(w.Ctx)
	}
	for i := len(w.releases) - 1; i >= 0; i-- {
		w.releases[i]()
	}
	w.releases = nil
}

// Peek runs read for lookups that must not touch the snapshot of the unit in
// ctx, such as resolving lock keys: the first read of a snapshot transaction
// fixes its snapshot, so that read has to come after the lock. When the unit
// in ctx binds a session, read gets a short read-only unit of its own. Other
// units read current state anyway and are used directly.
func Peek[T any](ctx context.Context, factory uow.UoWFactory, read func(context.Context, uow.UnitOfWork) (T, error)) (T, error) {
	var zero T
	current, ok := uow.FromContext(ctx)
	if _, snapshot := current.(uow.ContextBinder); ok && !snapshot {
		return read(ctx, current)
	}
	if factory == nil {
		if !ok {
			return zero, uow.ErrUnitOfWorkMissing
		}
		return read(ctx, current)
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return zero, err
	}
	peekCtx := uow.Attach(ctx, unit)
	defer func() { _ = unit.Rollback(peekCtx) }()
	return read(peekCtx, unit)
}
