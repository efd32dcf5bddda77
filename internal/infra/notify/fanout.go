package notify

import (
	"context"
	"errors"

	"vidaview/internal/app/policies"
)

// Fanout hands each notification to every notifier and joins their errors.
type Fanout []policies.Notifier

func (f Fanout) Enqueue(ctx context.Context, msg policies.Notification) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Enqueue(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ policies.Notifier = Fanout(nil)
