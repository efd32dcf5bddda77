package middleware

import (
	"context"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/outbox"
)

// OutboxFlush flushes box after a successful command. Use it inside
// Transaction when the store joins the transaction itself.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

// OutboxBuffer collects the events of one command and writes them only after
// everything below it, the transaction included, succeeded. Place it outside
// Transaction.
func OutboxBuffer(d *outbox.Deferred) CommandMiddleware {
	if d == nil {
		panic("middleware: deferred outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			buffered := outbox.WithBuffer(ctx)
			res, err := next.Dispatch(buffered, cmd)
			if err != nil {
				d.Discard(buffered)
				return nil, err
			}
			if err := d.Flush(buffered); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
