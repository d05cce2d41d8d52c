// Package model defines the domain records and wire payloads shared across
// the order-fulfillment pipeline. It keeps lifecycle snapshots, caller
// overrides, and transport types in one place for reuse.
package model

import "time"

// Overrides is the caller-supplied input bag for one pipeline invocation.
// The pipeline treats it as read-only; resolved defaults and stamps are
// returned in Metadata instead of being written back (see Result).
type Overrides struct {
	Amount     int64  `json:"amount,omitempty"`      // charge amount; 0 falls back to config default
	Template   string `json:"template,omitempty"`    // notification template name
	Flag       string `json:"flag,omitempty"`        // order classification, e.g. "expedite"
	Email      string `json:"email,omitempty"`       // customer email; ignored after first sight of the order id
	Actor      string `json:"actor,omitempty"`       // "started-by" identity
	ConfigPath string `json:"config_path,omitempty"` // explicit config file path
}

// Metadata records what the pipeline resolved for one invocation.
type Metadata struct {
	ProcessedAt time.Time `json:"processed_at"`
	StartedBy   string    `json:"started_by"`
	Flag        string    `json:"flag,omitempty"`
}

// CustomerStatus classifies a customer record.
type CustomerStatus string

const (
	CustomerGuest      CustomerStatus = "guest"
	CustomerRegistered CustomerStatus = "registered"
)

// CustomerRecord is a directory entry keyed by order id.
// The pipeline only ever synthesizes guest records.
type CustomerRecord struct {
	ID     string         `json:"id"`
	Status CustomerStatus `json:"status"`
	Email  string         `json:"email"`
}

// Stage is a point in the order lifecycle.
type Stage string

const (
	StageStarted   Stage = "started"
	StageCharged   Stage = "charged"
	StageCompleted Stage = "completed"
)

// OrderSnapshot is the full-replacement record stored in the order cache.
// Each stage carries only its own fields; a transition overwrites the whole
// value, so nothing from the prior stage survives.
type OrderSnapshot struct {
	OrderID     string    `json:"order_id"`
	Stage       Stage     `json:"stage"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	Flag        string    `json:"flag,omitempty"`
	AuthCode    string    `json:"auth_code,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// StartedSnapshot builds the initial lifecycle record.
func StartedSnapshot(orderID string, at time.Time, flag string) OrderSnapshot {
	return OrderSnapshot{OrderID: orderID, Stage: StageStarted, StartedAt: at, Flag: flag}
}

// ChargedSnapshot builds the post-payment record. The started fields are
// deliberately absent: transitions replace, they do not merge.
func ChargedSnapshot(orderID, authCode string) OrderSnapshot {
	return OrderSnapshot{OrderID: orderID, Stage: StageCharged, AuthCode: authCode}
}

// CompletedSnapshot builds the final record written by delayed finalization.
func CompletedSnapshot(orderID string, at time.Time) OrderSnapshot {
	return OrderSnapshot{OrderID: orderID, Stage: StageCompleted, CompletedAt: at}
}

// Flags is a snapshot of process-wide runtime state taken when a result is
// delivered, not when the invocation started.
type Flags struct {
	Outage  bool  `json:"outage"`
	Retries int64 `json:"retries"`
}

// Result statuses.
const (
	StatusOK     = "ok"
	StatusQueued = "queued"
)

// Result is delivered exactly once per invocation, before the delayed
// finalization fires. A queued result carries no auth or customer data.
type Result struct {
	Status         string
	OrderID        string
	Auth           *Auth
	Customer       *CustomerRecord
	Flags          Flags
	Metadata       Metadata
	NotificationID string
}
