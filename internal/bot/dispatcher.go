// Package bot consumes transport file events and fans them out to pipeline
// runs with bounded concurrency.
package bot

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"refile/internal/logging"
	"refile/internal/pipeline"
	"refile/internal/transport"
)

// DefaultMaxConcurrent bounds simultaneous pipeline runs.
const DefaultMaxConcurrent = 8

// Stats counts dispatcher activity.
type Stats struct {
	Processed int64
	Failed    int64
	Skipped   int64
}

// Dispatcher pulls events off a channel and runs the pipeline for each.
type Dispatcher struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
	limit    int

	processed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
}

// New constructs a dispatcher. Non-positive limits fall back to
// DefaultMaxConcurrent.
func New(p *pipeline.Pipeline, limit int, logger *slog.Logger) *Dispatcher {
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	return &Dispatcher{
		pipeline: p,
		logger:   logging.NewComponentLogger(logger, "bot"),
		limit:    limit,
	}
}

// Run consumes events until the channel closes or ctx is cancelled, then
// waits for in-flight runs to finish.
func (d *Dispatcher) Run(ctx context.Context, events <-chan transport.FileEvent) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.limit)

	for {
		select {
		case <-ctx.Done():
			_ = group.Wait()
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return group.Wait()
			}
			group.Go(func() error {
				d.handle(groupCtx, event)
				return nil
			})
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, event transport.FileEvent) {
	result := d.pipeline.Process(ctx, event)
	switch result.Outcome {
	case pipeline.OutcomeCompleted:
		d.processed.Add(1)
	case pipeline.OutcomeFailed, pipeline.OutcomeContentRejected:
		d.failed.Add(1)
	default:
		d.skipped.Add(1)
	}
	d.logger.Info("run finished",
		logging.String("file", event.File.Name),
		logging.String("outcome", string(result.Outcome)),
		logging.String("stage", string(result.Stage)))
}

// Snapshot returns the current counters.
func (d *Dispatcher) Snapshot() Stats {
	return Stats{
		Processed: d.processed.Load(),
		Failed:    d.failed.Load(),
		Skipped:   d.skipped.Load(),
	}
}
