package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"vidaview/internal/app/policies"
)

// Webhook posts each notification as JSON to an external endpoint.
type Webhook struct {
	client *resty.Client
	url    string
	clock  func() time.Time
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "vidaview-notify/1")
	return &Webhook{client: client, url: url, clock: time.Now}
}

func (w *Webhook) Enqueue(ctx context.Context, msg policies.Notification) error {
	env := newEnvelope(msg, w.clock())
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", env.ID).
		SetBody(env).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("notify: webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify: webhook returned %s", resp.Status())
	}
	return nil
}

var _ policies.Notifier = (*Webhook)(nil)
