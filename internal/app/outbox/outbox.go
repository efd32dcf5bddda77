package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidaview/internal/domain/shared/events"
)

// HeaderAggregateType names the aggregate kind (booking, payment, ...) so
// consumers can route records without decoding the payload.
const HeaderAggregateType = "aggregate_type"

// EventRecord is a domain event serialised for the relay.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// Encode serialises ev as JSON under a fresh record id.
func Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	name := ev.EventName()
	aggregateType, _, _ := strings.Cut(name, ".")
	return EventRecord{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{HeaderAggregateType: aggregateType},
	}, nil
}

// Append encodes evs and adds them to box in order. A nil box drops them.
func Append(ctx context.Context, box Outbox, evs ...events.DomainEvent) error {
	if box == nil {
		return nil
	}
	for _, ev := range evs {
		rec, err := Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
