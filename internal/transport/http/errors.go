package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/iliamunaev/order-fulfillment/internal/apperr"
	"github.com/iliamunaev/order-fulfillment/internal/model"
)

// writeJSON writes v as a JSON response with the given status code.
// The Content-Type is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the error envelope for a classified domain error.
func writeError(w http.ResponseWriter, orderID string, err error, msg string) {
	writeJSON(w, apperr.HTTPStatus(err), model.OrderResponse{
		Status:  "error",
		OrderID: orderID,
		Error: &model.ErrorPayload{
			Kind:    apperr.Kind(err),
			Message: msg,
		},
	})
}

// writeBadRequest rejects malformed input before it reaches the pipeline.
func writeBadRequest(w http.ResponseWriter, orderID, msg string) {
	writeJSON(w, http.StatusBadRequest, model.OrderResponse{
		Status:  "error",
		OrderID: orderID,
		Error: &model.ErrorPayload{
			Kind:    "bad_request",
			Message: msg,
		},
	})
}
