package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]string
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.docs) == 0 {
		return nil, nil
	}
	doc := q.docs[0]
	q.docs = q.docs[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, _ time.Time, msg string) error {
	q.failed[id] = msg
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	out     []published
	failKey string
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.failKey != "" && key == p.failKey {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	q := &fakeQueue{failed: map[string]string{}, docs: []*EventDocument{
		{ID: "e1", Name: "booking.approved", Aggregate: "bk-1", Payload: []byte(`{"BookingID":"bk-1"}`), OccurredAt: at},
		{ID: "e2", Name: "payment.confirmed", Aggregate: "pay-9", Payload: []byte(`{}`), OccurredAt: at},
		{ID: "e3", Name: "review.submitted", Aggregate: "rv-1", Payload: []byte(`not json`), OccurredAt: at},
		{ID: "e4", Name: "booking.cancelled", Aggregate: "bk-2", Payload: []byte(`{}`), OccurredAt: at},
	}}
	p := &fakeProducer{failKey: "bk-2"}
	w := &Worker{Store: q, Producer: p, TopicPrefix: "vv.", Backoff: []time.Duration{time.Second}}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"e1", "e2"}, q.sent)
	assert.Contains(t, q.failed, "e3")
	assert.Equal(t, "broker down", q.failed["e4"])

	require.Len(t, p.out, 2)
	assert.Equal(t, "vv.booking.events.v1", p.out[0].topic)
	assert.Equal(t, "vv.payment.events.v1", p.out[1].topic)
	assert.Equal(t, "application/cloudevents+json", p.out[0].headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(p.out[0].payload, &evt))
	assert.Equal(t, "booking.approved.v1", evt["type"])
	assert.Equal(t, "app://vidaview", evt["source"])
	assert.Equal(t, "e1", evt["id"])
	assert.Equal(t, "bk-1", evt["data"].(map[string]any)["BookingID"])
}

func TestDrainRespectsBatch(t *testing.T) {
	q := &fakeQueue{failed: map[string]string{}}
	for _, id := range []string{"a", "b", "c"} {
		q.docs = append(q.docs, &EventDocument{ID: id, Name: "booking.requested", Aggregate: "bk-" + id, Payload: []byte(`{}`)})
	}
	w := &Worker{Store: q, Producer: &fakeProducer{}, Batch: 2}
	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"a", "b"}, q.sent)
	assert.Empty(t, q.failed)
	assert.Len(t, q.docs, 1)
}

func TestRunRequiresDependencies(t *testing.T) {
	require.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}
