// Package payment provides the simulated payment gateway used by the order
// pipeline.
//
// Charge respects context cancellation and returns a classified domain error
// when the charge is declined.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/iliamunaev/order-fulfillment/internal/apperr"
	"github.com/iliamunaev/order-fulfillment/internal/model"
	"github.com/iliamunaev/order-fulfillment/internal/service/shared"
)

// maxAmount is the largest charge the simulator authorizes.
const maxAmount = 10_000

// Simulator stands in for a real gateway: it waits out a configured latency,
// validates the amount, and issues a random authorization code.
type Simulator struct {
	latency time.Duration
}

// NewSimulator creates a simulator with the given per-charge latency.
func NewSimulator(latency time.Duration) *Simulator {
	return &Simulator{latency: latency}
}

// Charge authorizes ch and returns the gateway's auth code.
//
// Negative amounts and amounts over the gateway limit are declined with an
// error wrapping apperr.ErrPaymentDeclined. A zero amount is a valid charge;
// callers that resolve no amount still authorize.
func (s *Simulator) Charge(ctx context.Context, ch model.Charge) (model.Auth, error) {
	if err := shared.SleepOrDone(ctx, s.latency); err != nil {
		return model.Auth{}, fmt.Errorf("payment %s: %w", ch.OrderID, err)
	}

	if ch.Amount < 0 {
		return model.Auth{}, fmt.Errorf("payment %s: negative amount %d: %w", ch.OrderID, ch.Amount, apperr.ErrPaymentDeclined)
	}
	if ch.Amount > maxAmount {
		return model.Auth{}, fmt.Errorf("payment %s: amount %d exceeds limit: %w", ch.OrderID, ch.Amount, apperr.ErrPaymentDeclined)
	}

	code, err := authCode()
	if err != nil {
		return model.Auth{}, fmt.Errorf("payment %s: %w", ch.OrderID, err)
	}
	return model.Auth{AuthCode: code}, nil
}

// authCode returns a random 16-character hex authorization code.
func authCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth code: %w", err)
	}
	return hex.EncodeToString(b), nil
}
