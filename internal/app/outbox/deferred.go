package outbox

import (
	"context"
	"sync"
)

type bufferKey struct{}

type buffer struct {
	mu      sync.Mutex
	records []EventRecord
}

// WithBuffer starts collecting records added through a Deferred outbox.
func WithBuffer(ctx context.Context) context.Context {
	return context.WithValue(ctx, bufferKey{}, &buffer{})
}

// Deferred holds records in the context buffer until Flush, so stores that
// cannot join the ledger transaction only see events of committed commands.
// Without a buffer in the context, Add writes through to Next.
type Deferred struct {
	Next Outbox
}

func (d *Deferred) Add(ctx context.Context, record EventRecord) error {
	if b, ok := ctx.Value(bufferKey{}).(*buffer); ok && b != nil {
		b.mu.Lock()
		b.records = append(b.records, record)
		b.mu.Unlock()
		return nil
	}
	return d.Next.Add(ctx, record)
}

// Flush writes the buffered records to Next and flushes it.
func (d *Deferred) Flush(ctx context.Context) error {
	for _, rec := range d.take(ctx) {
		if err := d.Next.Add(ctx, rec); err != nil {
			return err
		}
	}
	return d.Next.Flush(ctx)
}

// Discard drops the buffered records of a failed command.
func (d *Deferred) Discard(ctx context.Context) int {
	return len(d.take(ctx))
}

func (d *Deferred) take(ctx context.Context) []EventRecord {
	b, ok := ctx.Value(bufferKey{}).(*buffer)
	if !ok || b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.records
	b.records = nil
	return out
}

var _ Outbox = (*Deferred)(nil)
