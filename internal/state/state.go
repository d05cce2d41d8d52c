// Package state holds the process-wide runtime counters shared by pipeline
// invocations: the monotonic retry counter, the last-processed order id,
// and the outage flag.
//
// The legacy workflow kept these as bare globals; here they live in an
// injected Runtime guarded by atomics and a mutex, so concurrent
// invocations interleave without torn writes. The retry counter remains
// process-global by design: it counts invocations across the process
// lifetime, not retries of any single order.
package state

import (
	"sync"
	"sync/atomic"
)

// Runtime is the shared runtime state for one pipeline instance.
// The zero value is ready to use.
type Runtime struct {
	retries atomic.Int64
	outage  atomic.Bool

	mu          sync.Mutex
	lastOrderID string
}

// BeginInvocation records one pipeline invocation: it increments the retry
// counter and stores orderID as the last-processed id, returning the new
// counter value. Called unconditionally, whatever the outcome.
func (r *Runtime) BeginInvocation(orderID string) int64 {
	r.mu.Lock()
	r.lastOrderID = orderID
	r.mu.Unlock()
	return r.retries.Add(1)
}

// Retries returns the current invocation count.
func (r *Runtime) Retries() int64 { return r.retries.Load() }

// LastOrderID returns the most recently recorded order id.
func (r *Runtime) LastOrderID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOrderID
}

// Outage reports whether the global outage flag is set.
func (r *Runtime) Outage() bool { return r.outage.Load() }

// SetOutage flips the global outage flag. While set, every invocation takes
// the offline branch regardless of configuration.
func (r *Runtime) SetOutage(on bool) { r.outage.Store(on) }
