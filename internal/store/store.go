// Package store provides the in-memory keyed stores backing the pipeline:
// the customer directory and the order state cache.
//
// Both are whole-value maps under an RWMutex. Replacement is atomic, so
// concurrent writers for the same key resolve to last-write-wins without
// torn records. Neither store evicts; unbounded growth is a known and
// accepted limitation.
package store

import (
	"fmt"
	"sync"

	"github.com/iliamunaev/order-fulfillment/internal/model"
)

// Customers is the directory of customer records keyed by order id.
type Customers struct {
	mu      sync.RWMutex
	records map[string]model.CustomerRecord
}

// NewCustomers creates an empty customer directory.
func NewCustomers() *Customers {
	return &Customers{records: make(map[string]model.CustomerRecord)}
}

// GetOrCreate returns the record for orderID, synthesizing a guest record
// on first sight. The placeholder email is deterministic in the order id.
// Email overrides on later calls for the same id are ignored: first write
// wins, and the stored record is never updated by the pipeline.
func (c *Customers) GetOrCreate(orderID, emailOverride string) model.CustomerRecord {
	c.mu.RLock()
	rec, ok := c.records[orderID]
	c.mu.RUnlock()
	if ok {
		return rec
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under the write lock: another invocation may have won.
	if rec, ok := c.records[orderID]; ok {
		return rec
	}

	email := emailOverride
	if email == "" {
		email = fmt.Sprintf("guest-%s@example.com", orderID)
	}
	rec = model.CustomerRecord{
		ID:     orderID,
		Status: model.CustomerGuest,
		Email:  email,
	}
	c.records[orderID] = rec
	return rec
}

// Len returns the number of directory entries.
func (c *Customers) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Orders is the order state cache, keyed by order id.
type Orders struct {
	mu        sync.RWMutex
	snapshots map[string]model.OrderSnapshot
}

// NewOrders creates an empty order state cache.
func NewOrders() *Orders {
	return &Orders{snapshots: make(map[string]model.OrderSnapshot)}
}

// Set overwrites the snapshot stored for snap.OrderID. Transitions never
// merge: whatever was stored before is discarded in full.
func (o *Orders) Set(snap model.OrderSnapshot) {
	o.mu.Lock()
	o.snapshots[snap.OrderID] = snap
	o.mu.Unlock()
}

// Get returns the most recent snapshot for orderID.
//
// There is no ordering guarantee against the delayed finalizer: a reader
// holding a fresh success result may still observe the charged stage.
func (o *Orders) Get(orderID string) (model.OrderSnapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	snap, ok := o.snapshots[orderID]
	return snap, ok
}

// Len returns the number of cached snapshots.
func (o *Orders) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.snapshots)
}
