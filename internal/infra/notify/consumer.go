package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// Inbox reports whether an event was already applied by this consumer.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Sink receives decoded envelopes; Store implements it.
type Sink interface {
	Deliver(ctx context.Context, env Envelope) error
}

// Consumer applies notification envelopes read from Kafka exactly once per
// inbox retention window.
type Consumer struct {
	Inbox  Inbox
	Sink   Sink
	Logger *slog.Logger
}

func (c *Consumer) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// A payload that never decodes would block the partition; drop it.
		c.logger().Error("notification envelope rejected", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if env.ID == "" {
		c.logger().Error("notification envelope without id", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}
	if c.Inbox != nil {
		seen, err := c.Inbox.Seen(ctx, env.ID)
		if err != nil {
			return fmt.Errorf("notify: inbox: %w", err)
		}
		if seen {
			c.logger().Debug("notification duplicate skipped", "notification_id", env.ID)
			return nil
		}
	}
	if err := c.Sink.Deliver(ctx, env); err != nil {
		return fmt.Errorf("notify: deliver %s: %w", env.ID, err)
	}
	c.logger().Info("notification stored", "notification_id", env.ID, "user_id", env.Notification.UserID, "type", env.Notification.Type)
	return nil
}

func (c *Consumer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
