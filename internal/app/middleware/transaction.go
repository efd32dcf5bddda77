package middleware

import (
	"context"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/uow"
)

// NonTransactional marks commands that never touch the ledger repositories,
// such as notification read flags. Transaction passes them straight through.
type NonTransactional interface {
	NonTransactional()
}

// Transaction runs each ledger command in one unit of work and commits it when
// the handler succeeds. A unit already in ctx is joined rather than nested.
func Transaction(factory uow.UoWFactory) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, skip := cmd.(NonTransactional); skip {
				return next.Dispatch(ctx, cmd)
			}
			if _, joined := uow.FromContext(ctx); joined {
				return next.Dispatch(ctx, cmd)
			}
			unit, err := factory.Begin(ctx, uow.TxOptions{})
			if err != nil {
				return nil, err
			}
			execCtx := uow.Attach(ctx, unit)
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := next.Dispatch(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}
