package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodicRunsJobsUntilCancelled(t *testing.T) {
	var ok, failing atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &Periodic{
		Interval:   5 * time.Millisecond,
		RunOnStart: true,
		Jobs: []Job{
			JobFunc{JobName: "count", Fn: func(context.Context) error {
				if ok.Add(1) >= 3 {
					cancel()
				}
				return nil
			}},
			JobFunc{JobName: "broken", Fn: func(context.Context) error {
				failing.Add(1)
				return errors.New("boom")
			}},
		},
	}

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, ok.Load(), int32(3))
	assert.GreaterOrEqual(t, failing.Load(), int32(2))
}

func TestPeriodicWithoutJobs(t *testing.T) {
	require.ErrorIs(t, (&Periodic{}).Run(context.Background()), ErrNoJobs)
}
