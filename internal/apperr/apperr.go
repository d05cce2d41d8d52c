// Package apperr classifies pipeline errors for logging and transport.
//
// Payment failures are the only collaborator errors surfaced to callers;
// audit and notification failures are swallowed at their call sites and
// never reach this mapping.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrPaymentDeclined = errors.New("payment declined")
	ErrOrderNotFound   = errors.New("order not found")
)

// Kind returns a stable machine-readable label for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrPaymentDeclined):
		return "payment_declined"

	case errors.Is(err, ErrOrderNotFound):
		return "not_found"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

// HTTPStatus maps err to the response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrPaymentDeclined):
		return http.StatusBadRequest

	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
