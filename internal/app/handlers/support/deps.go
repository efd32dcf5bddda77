package support

import (
	"context"
	"log/slog"
	"time"

	"vidaview/internal/app/locking"
	"vidaview/internal/app/outbox"
	"vidaview/internal/app/policies"
	"vidaview/internal/app/uow"
	"vidaview/internal/domain/shared/events"
)

// Deps bundles the collaborators shared by the ledger command handlers.
type Deps struct {
	UoWFactory uow.UoWFactory
	Locker     locking.Locker
	Notifier   policies.Notifier
	Outbox     outbox.Outbox
	Logger     *slog.Logger
	Clock      func() time.Time
}

type eventSource interface {
	Drain() []events.DomainEvent
}

func (d Deps) Now() time.Time {
	if d.Clock != nil {
		return d.Clock().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) Log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Hold takes the named lock; see locking.Hold for release semantics.
func (d Deps) Hold(ctx context.Context, key string) (func(), error) {
	return locking.Hold(ctx, d.Locker, key)
}

// RecordEvents moves the pending events of every source into the outbox.
func (d Deps) RecordEvents(ctx context.Context, sources ...eventSource) error {
	for _, src := range sources {
		if err := outbox.Append(ctx, d.Outbox, src.Drain()...); err != nil {
			return err
		}
	}
	return nil
}

// Notify hands msg to the notifier. Failures are logged and never returned.
func (d Deps) Notify(ctx context.Context, msg policies.Notification) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Enqueue(ctx, msg); err != nil {
		d.Log().Warn("notification enqueue failed", "user_id", msg.UserID, "type", msg.Type, "error", err)
	}
}
