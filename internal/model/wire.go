package model

// OrderRequest is the input payload for processing an order. Override
// fields are inlined next to the order id on the wire.
type OrderRequest struct {
	OrderID string `json:"order_id"`
	Overrides
}

// OrderResponse is the output payload returned by the order handler.
type OrderResponse struct {
	Status         string          `json:"status"` // "ok" | "queued" | "error"
	OrderID        string          `json:"order_id"`
	Auth           *Auth           `json:"auth,omitempty"`
	Customer       *CustomerRecord `json:"customer,omitempty"`
	Flags          *Flags          `json:"flags,omitempty"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
	NotificationID string          `json:"notification_id,omitempty"`
	Error          *ErrorPayload   `json:"error,omitempty"`
}

// ErrorPayload describes an error response.
type ErrorPayload struct {
	Kind    string `json:"kind"`              // "payment_declined", "timeout"
	Message string `json:"message,omitempty"` // optional, human-readable error message
}
