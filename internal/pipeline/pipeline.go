package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	"github.com/couchcryptid/storm-surge-prep/internal/observability"
)

// Extractor reads the next raw preparation request from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawRequest, error)
}

// Preparer turns a raw request into a publishable preparation result.
type Preparer interface {
	Prepare(ctx context.Context, raw domain.RawRequest) (domain.OutputMessage, error)
}

// Publisher writes a preparation result to the destination.
type Publisher interface {
	Publish(ctx context.Context, msg domain.OutputMessage) error
}

// Pipeline orchestrates the extract-prepare-publish loop.
type Pipeline struct {
	extractor Extractor
	preparer  Preparer
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, p Preparer, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		preparer:  p,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ready reports whether the pipeline has published at least one result.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil if the pipeline has published at least one result,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any results yet")
	}
	return nil
}

// Run executes the preparation loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processOne(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processOne runs one extract-prepare-publish cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processOne(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.RequestsConsumed.Inc()
	*backoff = 200 * time.Millisecond

	out, err := p.preparer.Prepare(ctx, raw)
	if err != nil {
		p.logger.Warn("prepare failed, skipping request",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.PrepErrors.Inc()
		p.commitOffset(ctx, raw)
		return true
	}

	if err := p.publisher.Publish(ctx, out); err != nil {
		p.logger.Error("publish failed", "error", err, "key", out.Key)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.ResultsPublished.Inc()
	p.metrics.PrepDuration.Observe(time.Since(start).Seconds())
	p.commitOffset(ctx, raw)
	p.ready.Store(true)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the request offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawRequest) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
