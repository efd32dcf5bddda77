package notify

import (
	"context"
	"encoding/json"
	"time"

	"vidaview/internal/app/policies"
)

const DefaultTopic = "notification.requests.v1"

// Producer is the subset of the Kafka producer used here.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Publisher puts notifications on a topic keyed by user, keeping one user's
// notifications ordered within a partition.
type Publisher struct {
	Producer    Producer
	Topic       string
	TopicPrefix string
	Clock       func() time.Time
}

func (p *Publisher) Enqueue(ctx context.Context, msg policies.Notification) error {
	now := time.Now()
	if p.Clock != nil {
		now = p.Clock()
	}
	env := newEnvelope(msg, now)
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"content-type": "application/json",
		"ce_id":        env.ID,
	}
	return p.Producer.Publish(ctx, p.topic(), msg.UserID, payload, headers)
}

func (p *Publisher) topic() string {
	topic := p.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return p.TopicPrefix + topic
}

// Topic is the topic a Publisher with these settings writes to.
func Topic(prefix string) string {
	return (&Publisher{TopicPrefix: prefix}).topic()
}

var _ policies.Notifier = (*Publisher)(nil)
