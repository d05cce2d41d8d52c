package model

import "time"

// Charge is the payment gateway request shape.
type Charge struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
}

// Auth is a successful payment authorization.
type Auth struct {
	AuthCode string `json:"auth_code"`
}

// MessageContext carries the order correlation data rendered into a
// notification.
type MessageContext struct {
	OrderID  string `json:"order_id"`
	AuthCode string `json:"auth_code,omitempty"`
}

// Message is the notification sender request shape.
type Message struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Context  MessageContext `json:"context"`
}

// Job types accepted by the work queue.
const (
	JobOffline = "order.offline"
	JobRetry   = "order.retry"
)

// Job is a deferred unit of work carrying the full overrides payload, so a
// later replay re-enters the pipeline with the original inputs.
type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // "order.offline" | "order.retry"
	OrderID    string    `json:"order_id"`
	Payload    Overrides `json:"payload"`
	Reason     string    `json:"reason,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
