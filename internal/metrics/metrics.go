// Package metrics counts pipeline outcomes with atomics.
package metrics

import "sync/atomic"

// Collector accumulates order-processing counters. All methods are safe for
// concurrent use; counters only reset with the process.
type Collector struct {
	processed     atomic.Int64
	queuedOffline atomic.Int64
	paymentErrors atomic.Int64
	notifyErrors  atomic.Int64
	completed     atomic.Int64
	retriesQueued atomic.Int64
	deadLetters   atomic.Int64
	queueErrors   atomic.Int64
}

// New creates a zeroed collector.
func New() *Collector {
	return &Collector{}
}

// RecordProcessed counts a pipeline invocation, whatever its outcome.
func (c *Collector) RecordProcessed() { c.processed.Add(1) }

// RecordQueuedOffline counts an order deferred to the offline queue.
func (c *Collector) RecordQueuedOffline() { c.queuedOffline.Add(1) }

// RecordPaymentError counts a declined or failed charge.
func (c *Collector) RecordPaymentError() { c.paymentErrors.Add(1) }

// RecordNotifyError counts a swallowed notification failure.
func (c *Collector) RecordNotifyError() { c.notifyErrors.Add(1) }

// RecordCompleted counts a finalized order.
func (c *Collector) RecordCompleted() { c.completed.Add(1) }

// RecordRetryQueued counts a retry job enqueued after a payment failure.
func (c *Collector) RecordRetryQueued() { c.retriesQueued.Add(1) }

// RecordDeadLetter counts a job dropped after exhausting its attempts.
func (c *Collector) RecordDeadLetter() { c.deadLetters.Add(1) }

// RecordQueueError counts a failed enqueue. The order itself is unaffected;
// only the deferred job is lost.
func (c *Collector) RecordQueueError() { c.queueErrors.Add(1) }

// Processed returns the number of pipeline invocations.
func (c *Collector) Processed() int64 { return c.processed.Load() }

// Completed returns the number of finalized orders.
func (c *Collector) Completed() int64 { return c.completed.Load() }

// Stats is a point-in-time snapshot of all counters.
type Stats struct {
	Processed     int64 `json:"processed"`
	QueuedOffline int64 `json:"queued_offline"`
	PaymentErrors int64 `json:"payment_errors"`
	NotifyErrors  int64 `json:"notify_errors"`
	Completed     int64 `json:"completed"`
	RetriesQueued int64 `json:"retries_queued"`
	DeadLetters   int64 `json:"dead_letters"`
	QueueErrors   int64 `json:"queue_errors"`
}

// GetStats snapshots every counter. Counters are read independently, so a
// snapshot taken mid-flight may be skewed by one in-progress order.
func (c *Collector) GetStats() Stats {
	return Stats{
		Processed:     c.processed.Load(),
		QueuedOffline: c.queuedOffline.Load(),
		PaymentErrors: c.paymentErrors.Load(),
		NotifyErrors:  c.notifyErrors.Load(),
		Completed:     c.completed.Load(),
		RetriesQueued: c.retriesQueued.Load(),
		DeadLetters:   c.deadLetters.Load(),
		QueueErrors:   c.queueErrors.Load(),
	}
}
