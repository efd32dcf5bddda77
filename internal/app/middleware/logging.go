package middleware

import (
	"context"
	"log/slog"
	"time"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/queries"
	"vidaview/internal/domain/shared/errs"
)

// Logging records every command with its duration. Domain failures log at
// info, unclassified ones at error.
func Logging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			logOutcome(ctx, logger, "command", cmd.Key(), start, err)
			return res, err
		})
	}
}

// QueryLogging reports failed queries only; successful reads are too frequent.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			if err != nil {
				logOutcome(ctx, logger, "query", q.Key(), start, err)
			}
			return res, err
		})
	}
}

func logOutcome(ctx context.Context, logger *slog.Logger, kind, key string, start time.Time, err error) {
	attrs := []any{kind, key, "duration", time.Since(start)}
	switch {
	case err == nil:
		logger.DebugContext(ctx, kind+" handled", attrs...)
	case errs.KindOf(err) != nil:
		logger.InfoContext(ctx, kind+" rejected", append(attrs, "error", err)...)
	default:
		logger.ErrorContext(ctx, kind+" failed", append(attrs, "error", err)...)
	}
}
