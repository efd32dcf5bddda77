// Package notifications holds notifications raised by a command until its
// transaction commits, then hands them to the real dispatcher.
package notifications

import (
	"context"
	"log/slog"
	"sync"

	"vidaview/internal/app/policies"
)

type bufferKey struct{}

type buffer struct {
	mu    sync.Mutex
	items []policies.Notification
}

// WithBuffer starts collecting notifications enqueued through a Deferred notifier.
func WithBuffer(ctx context.Context) context.Context {
	return context.WithValue(ctx, bufferKey{}, &buffer{})
}

// Deferred buffers notifications when a buffer is present in the context and
// delivers immediately otherwise. Delivery errors are logged, never returned.
type Deferred struct {
	Next   policies.Notifier
	Logger *slog.Logger
}

func (d *Deferred) Enqueue(ctx context.Context, msg policies.Notification) error {
	if b, ok := ctx.Value(bufferKey{}).(*buffer); ok && b != nil {
		b.mu.Lock()
		b.items = append(b.items, msg)
		b.mu.Unlock()
		return nil
	}
	d.deliver(ctx, msg)
	return nil
}

// Flush delivers what was buffered in ctx.
func (d *Deferred) Flush(ctx context.Context) {
	for _, msg := range d.take(ctx) {
		d.deliver(ctx, msg)
	}
}

// Discard drops buffered notifications after a failed command.
func (d *Deferred) Discard(ctx context.Context) {
	dropped := d.take(ctx)
	if len(dropped) > 0 && d.Logger != nil {
		d.Logger.Debug("notifications discarded", "count", len(dropped))
	}
}

func (d *Deferred) take(ctx context.Context) []policies.Notification {
	b, ok := ctx.Value(bufferKey{}).(*buffer)
	if !ok || b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}

func (d *Deferred) deliver(ctx context.Context, msg policies.Notification) {
	if d.Next == nil {
		return
	}
	if err := d.Next.Enqueue(ctx, msg); err != nil && d.Logger != nil {
		d.Logger.Warn("notification delivery failed", "user_id", msg.UserID, "type", msg.Type, "related_id", msg.RelatedID, "error", err)
	}
}

var _ policies.Notifier = (*Deferred)(nil)
