package middleware

import (
	"context"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/notifications"
)

// NotificationFlush delivers notifications raised by a command only after the
// command (and the transaction below it) succeeded. Place it outside Transaction.
func NotificationFlush(d *notifications.Deferred) CommandMiddleware {
	if d == nil {
		panic("middleware: deferred notifier required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			buffered := notifications.WithBuffer(ctx)
			res, err := next.Dispatch(buffered, cmd)
			if err != nil {
				d.Discard(buffered)
				return nil, err
			}
			d.Flush(buffered)
			return res, nil
		})
	}
}
