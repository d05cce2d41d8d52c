// Package queue provides the deferred-work queues behind the order pipeline:
// an in-process FIFO for single-process runs and a Redis-backed sorted set
// for deployments that need the backlog to survive restarts.
//
// Jobs carry an optional due time. Dequeue never returns a job before it is
// due; among due jobs, arrival order wins.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/iliamunaev/order-fulfillment/internal/model"
)

// Memory is a mutex-guarded in-process job queue.
type Memory struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	job model.Job
	due time.Time
}

// NewMemory creates an empty in-process queue.
func NewMemory() *Memory {
	return &Memory{}
}

// Enqueue adds a job that is immediately due.
func (m *Memory) Enqueue(ctx context.Context, job model.Job) error {
	return m.EnqueueDelayed(ctx, job, 0)
}

// EnqueueDelayed adds a job that becomes due after delay.
func (m *Memory) EnqueueDelayed(_ context.Context, job model.Job, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{job: job, due: time.Now().Add(delay)})
	return nil
}

// Dequeue removes and returns the oldest due job, or nil when nothing is
// due yet.
func (m *Memory) Dequeue(_ context.Context) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for i, e := range m.entries {
		if e.due.After(now) {
			continue
		}
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
		job := e.job
		return &job, nil
	}
	return nil, nil
}

// Len returns the number of queued jobs, due or not.
func (m *Memory) Len(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

// Jobs returns a snapshot of all queued jobs in arrival order.
func (m *Memory) Jobs(_ context.Context) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]model.Job, len(m.entries))
	for i, e := range m.entries {
		jobs[i] = e.job
	}
	return jobs, nil
}

// Close releases nothing; it exists for interface parity with Redis.
func (m *Memory) Close() error { return nil }
