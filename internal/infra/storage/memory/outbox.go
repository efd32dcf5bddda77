package memory

import (
	"context"
	"sync"

	appoutbox "vidaview/internal/app/outbox"
)

const defaultOutboxRetention = 1024

// Outbox keeps recorded events in memory. Flush moves them to a bounded
// history that tests and the memory driver can inspect; nothing is relayed.
type Outbox struct {
	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	published []appoutbox.EventRecord
	retention int
}

func NewOutbox() *Outbox {
	return &Outbox{retention: defaultOutboxRetention}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published = append(o.published, o.pending...)
	o.pending = nil
	if o.retention > 0 && len(o.published) > o.retention {
		o.published = append([]appoutbox.EventRecord(nil), o.published[len(o.published)-o.retention:]...)
	}
	return nil
}

// Records returns flushed and pending events, oldest first.
func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.published)+len(o.pending))
	out = append(out, o.published...)
	return append(out, o.pending...)
}

// Names lists the event names of Records.
func (o *Outbox) Names() []string {
	records := o.Records()
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

var _ appoutbox.Outbox = (*Outbox)(nil)
