package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultInterval = 500 * time.Millisecond
	defaultBatch    = 100
	defaultRetry    = 5 * time.Second
	defaultSource   = "app://vidaview"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Queue is the claimable side of an outbox.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays outbox events to the broker as CloudEvents, one topic per
// aggregate ("booking.events.v1", "payment.events.v1", ...).
type Worker struct {
	Store       Queue
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	// Batch bounds how many events one tick relays.
	Batch  int
	Logger *slog.Logger
}

// cloudEvent is the structured-mode CloudEvents 1.0 envelope.
type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	TraceParent     string          `json:"traceparent,omitempty"`
	Data            json.RawMessage `json:"data"`
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil {
				return err
			}
		}
	}
}

// Drain relays due events until the queue is empty or the batch is used up.
// It returns how many events were published. A failed event is rescheduled
// and does not stop the drain; a queue error does.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	limit := w.Batch
	if limit <= 0 {
		limit = defaultBatch
	}
	owner := w.ID
	if owner == "" {
		owner = uuid.NewString()
	}
	sent := 0
	for i := 0; i < limit; i++ {
		doc, err := w.Store.Claim(ctx, owner)
		if err != nil {
			return sent, err
		}
		if doc == nil {
			break
		}
		if err := w.relay(ctx, doc); err != nil {
			w.reschedule(ctx, doc, err)
			continue
		}
		if err := w.Store.MarkSent(ctx, doc.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (w *Worker) relay(ctx context.Context, doc *EventDocument) error {
	payload, err := w.envelope(doc)
	if err != nil {
		return fmt.Errorf("encode cloudevent: %w", err)
	}
	headers := make(map[string]string, len(doc.Headers)+3)
	for k, v := range doc.Headers {
		headers[k] = v
	}
	headers["content-type"] = "application/cloudevents+json"
	headers["ce_id"] = doc.ID
	headers["ce_type"] = doc.Name + ".v1"
	return w.Producer.Publish(ctx, TopicFor(w.TopicPrefix, doc.Name), doc.Aggregate, payload, headers)
}

func (w *Worker) envelope(doc *EventDocument) ([]byte, error) {
	source := w.Source
	if source == "" {
		source = defaultSource
	}
	return json.Marshal(cloudEvent{
		SpecVersion:     "1.0",
		ID:              doc.ID,
		Type:            doc.Name + ".v1",
		Source:          source,
		Subject:         doc.Aggregate,
		Time:            doc.OccurredAt,
		DataContentType: "application/json",
		TraceParent:     doc.Headers["traceparent"],
		Data:            json.RawMessage(doc.Payload),
	})
}

func (w *Worker) reschedule(ctx context.Context, doc *EventDocument, cause error) {
	next := time.Now().Add(w.retryDelay(doc.Attempts))
	w.logger().Warn("outbox relay failed", "event_id", doc.ID, "event", doc.Name, "attempts", doc.Attempts+1, "retry_at", next, "error", cause)
	if err := w.Store.MarkFailed(ctx, doc.ID, next, cause.Error()); err != nil {
		w.logger().Error("outbox reschedule failed", "event_id", doc.ID, "error", err)
	}
}

// retryDelay walks the configured backoff and then stays on its last step.
func (w *Worker) retryDelay(attempts int) time.Duration {
	switch n := len(w.Backoff); {
	case n == 0:
		return defaultRetry
	case attempts < n:
		return w.Backoff[attempts]
	default:
		return w.Backoff[n-1]
	}
}

// TopicFor maps an event name onto its aggregate topic.
func TopicFor(prefix, name string) string {
	aggregate, _, _ := strings.Cut(name, ".")
	if aggregate == "" {
		aggregate = name
	}
	return prefix + aggregate + ".events.v1"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
