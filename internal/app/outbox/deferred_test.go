package outbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceOutbox struct {
	records []EventRecord
	flushes int
}

func (s *sliceOutbox) Add(_ context.Context, rec EventRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *sliceOutbox) Flush(context.Context) error {
	s.flushes++
	return nil
}

func TestDeferredHoldsRecordsUntilFlush(t *testing.T) {
	next := &sliceOutbox{}
	d := &Deferred{Next: next}
	ctx := WithBuffer(context.Background())

	require.NoError(t, d.Add(ctx, EventRecord{ID: "e1"}))
	require.NoError(t, d.Add(ctx, EventRecord{ID: "e2"}))
	assert.Empty(t, next.records)

	require.NoError(t, d.Flush(ctx))
	require.Len(t, next.records, 2)
	assert.Equal(t, "e1", next.records[0].ID)
	assert.Equal(t, 1, next.flushes)

	require.NoError(t, d.Flush(ctx))
	assert.Len(t, next.records, 2)
}

func TestDeferredDiscardAndWriteThrough(t *testing.T) {
	next := &sliceOutbox{}
	d := &Deferred{Next: next}
	ctx := WithBuffer(context.Background())

	require.NoError(t, d.Add(ctx, EventRecord{ID: "e1"}))
	assert.Equal(t, 1, d.Discard(ctx))
	require.NoError(t, d.Flush(ctx))
	assert.Empty(t, next.records)

	require.NoError(t, d.Add(context.Background(), EventRecord{ID: "direct"}))
	require.Len(t, next.records, 1)
}
