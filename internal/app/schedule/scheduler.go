// Package schedule runs background jobs on a fixed interval.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrNoJobs = errors.New("schedule: no jobs registered")

// Job is one unit of periodic work. A returned error is logged and the job
// runs again on the next tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                  { return j.JobName }
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// Periodic runs every job once per tick, sequentially, until ctx is done.
type Periodic struct {
	Interval time.Duration
	Jobs     []Job
	Logger   *slog.Logger
	// RunOnStart triggers a pass before the first tick.
	RunOnStart bool
}

func (p *Periodic) Run(ctx context.Context) error {
	if len(p.Jobs) == 0 {
		return ErrNoJobs
	}
	if p.RunOnStart {
		p.tick(ctx)
	}
	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Periodic) tick(ctx context.Context) {
	for _, job := range p.Jobs {
		if ctx.Err() != nil {
			return
		}
		if err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger().Error("scheduled job failed", "job", job.Name(), "error", err)
		}
	}
}

func (p *Periodic) interval() time.Duration {
	if p.Interval <= 0 {
		return time.Minute
	}
	return p.Interval
}

func (p *Periodic) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
