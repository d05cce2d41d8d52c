// Package worker replays deferred jobs from the work queue through the
// order pipeline.
//
// Pollers stand down while the runtime outage flag is set; the backlog
// drains once service resumes. A replay that parks its order again ends
// the drain pass, so a still-offline backlog is re-checked once per poll
// tick. A job whose replay keeps failing is retried with a delay until
// its attempts are exhausted, then dropped to the dead-letter count.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/order-fulfillment/internal/metrics"
	"github.com/iliamunaev/order-fulfillment/internal/model"
	"github.com/iliamunaev/order-fulfillment/internal/service/pool"
	"github.com/iliamunaev/order-fulfillment/internal/state"
)

// Queue is the worker-side view of the deferred-work queue.
type Queue interface {
	Dequeue(ctx context.Context) (*model.Job, error)
	EnqueueDelayed(ctx context.Context, job model.Job, delay time.Duration) error
}

// Processor re-runs an order; the pipeline satisfies this.
type Processor interface {
	Process(ctx context.Context, orderID string, ov model.Overrides) (*model.Result, error)
}

// Deps carries the worker's collaborators. Queue and Proc must be non-nil.
type Deps struct {
	Queue   Queue
	Proc    Processor
	Runtime *state.Runtime
	Metrics *metrics.Collector
	Log     *zap.Logger
}

// Config tunes the polling loops.
type Config struct {
	Pollers     int           // concurrent poll loops
	Slots       int           // jobs processed at once, defaults to Pollers
	PollEvery   time.Duration // idle wait between queue checks
	RetryDelay  time.Duration // backoff before a failed job becomes due again
	MaxAttempts int           // replays before a job is dropped
}

// Worker drains the deferred-work queue.
type Worker struct {
	queue     Queue
	proc      Processor
	runtime   *state.Runtime
	collector *metrics.Collector
	slots     *pool.Pool
	log       *zap.Logger

	pollers     int
	pollEvery   time.Duration
	retryDelay  time.Duration
	maxAttempts int
}

// New creates a worker. Zero config fields get workable defaults; nil
// Runtime, Metrics, and Log are replaced like in the pipeline.
func New(d Deps, cfg Config) *Worker {
	if d.Runtime == nil {
		d.Runtime = &state.Runtime{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if cfg.Pollers <= 0 {
		cfg.Pollers = 1
	}
	if cfg.Slots <= 0 {
		cfg.Slots = cfg.Pollers
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 100 * time.Millisecond
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 250 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Worker{
		queue:       d.Queue,
		proc:        d.Proc,
		runtime:     d.Runtime,
		collector:   d.Metrics,
		slots:       pool.New(cfg.Slots),
		log:         d.Log,
		pollers:     cfg.Pollers,
		pollEvery:   cfg.PollEvery,
		retryDelay:  cfg.RetryDelay,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Run polls until ctx is canceled and returns ctx's error.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.pollers; i++ {
		g.Go(func() error {
			return w.poll(ctx)
		})
	}
	return g.Wait()
}

func (w *Worker) poll(ctx context.Context) error {
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain processes due jobs until the queue is empty, a replay parks its
// order again, the outage flag is set, or ctx ends.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil && !w.runtime.Outage() {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.log.Error("dequeue failed", zap.Error(err))
			return
		}
		if job == nil {
			return
		}

		if err := w.slots.Acquire(ctx); err != nil {
			// Shutting down with a job in hand: park it back untouched.
			w.requeue(ctx, *job, 0)
			return
		}
		parked := w.handle(ctx, *job)
		w.slots.Release()
		if parked {
			// The fresh job is already due; re-check it on the next tick,
			// not in this pass.
			return
		}
	}
}

// handle replays one job. It reports whether the replay parked the order
// on the queue again instead of completing it.
func (w *Worker) handle(ctx context.Context, job model.Job) bool {
	w.log.Info("replaying deferred job",
		zap.String("job_id", job.ID),
		zap.String("job_type", job.Type),
		zap.String("order_id", job.OrderID),
		zap.Int("attempt", job.Attempts+1),
	)

	res, err := w.proc.Process(ctx, job.OrderID, job.Payload)
	if err != nil {
		job.Attempts++
		if job.Attempts >= w.maxAttempts {
			w.collector.RecordDeadLetter()
			w.log.Error("job attempts exhausted, dropping",
				zap.String("job_id", job.ID),
				zap.String("order_id", job.OrderID),
				zap.Int("attempts", job.Attempts),
				zap.Error(err),
			)
			return false
		}
		job.Reason = err.Error()
		w.requeue(ctx, job, w.retryDelay)
		return false
	}

	if res != nil && res.Status == model.StatusQueued {
		w.log.Debug("replay parked order again",
			zap.String("job_id", job.ID),
			zap.String("order_id", job.OrderID),
		)
		return true
	}
	return false
}

// requeue puts a job back on the queue. The write must survive shutdown,
// so the caller's cancellation is stripped.
func (w *Worker) requeue(ctx context.Context, job model.Job, delay time.Duration) {
	if err := w.queue.EnqueueDelayed(context.WithoutCancel(ctx), job, delay); err != nil {
		w.collector.RecordQueueError()
		w.log.Error("requeue failed",
			zap.String("job_id", job.ID),
			zap.String("order_id", job.OrderID),
			zap.Error(err),
		)
	}
}
