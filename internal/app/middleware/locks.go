package middleware

import (
	"context"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/locking"
)

// LockScope keeps locks taken by handlers until the rest of the chain,
// including the transaction commit, has returned. Place it outside Transaction.
func LockScope() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			scoped, scope := locking.WithScope(ctx)
			defer scope.Close()
			return next.Dispatch(scoped, cmd)
		})
	}
}
