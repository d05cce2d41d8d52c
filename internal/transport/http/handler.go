// Package httptransport implements the HTTP transport layer
// for order processing.
package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iliamunaev/order-fulfillment/internal/apperr"
	"github.com/iliamunaev/order-fulfillment/internal/metrics"
	"github.com/iliamunaev/order-fulfillment/internal/model"
	"github.com/iliamunaev/order-fulfillment/internal/state"
	"github.com/iliamunaev/order-fulfillment/internal/store"
)

type orderProcessor interface {
	Process(ctx context.Context, orderID string, ov model.Overrides) (*model.Result, error)
}

// Handler serves the order API.
type Handler struct {
	proc           orderProcessor
	orders         *store.Orders
	runtime        *state.Runtime
	stats          *metrics.Collector
	requestTimeout time.Duration
}

// New returns a Handler over the given processor and shared state.
//
// It panics if proc is nil. If requestTimeout is non-positive, a default
// timeout is applied.
func New(proc orderProcessor, orders *store.Orders, runtime *state.Runtime, stats *metrics.Collector, requestTimeout time.Duration) *Handler {
	if proc == nil {
		panic("handler.New: nil order processor")
	}
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &Handler{
		proc:           proc,
		orders:         orders,
		runtime:        runtime,
		stats:          stats,
		requestTimeout: requestTimeout,
	}
}

// Routes mounts all endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/order", h.HandleOrder)
	r.Get("/order/{orderID}", h.HandleSnapshot)
	r.Get("/metrics", h.HandleMetrics)
	r.Get("/health", h.HandleHealth)
	r.Post("/admin/outage", h.HandleOutage)
}

// HandleOrder runs one order through the pipeline.
//
// The request body must be a single JSON object with order_id and optional
// overrides. Processing is executed with a per-request timeout. The
// response always carries a structured OrderResponse.
func (h *Handler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, "", "invalid JSON")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeBadRequest(w, req.OrderID, "invalid JSON")
		return
	}
	if req.OrderID == "" {
		writeBadRequest(w, "", "order_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	res, err := h.proc.Process(ctx, req.OrderID, req.Overrides)
	if err != nil {
		writeError(w, req.OrderID, err, "order failed")
		return
	}

	status := http.StatusOK
	if res.Status == model.StatusQueued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, model.OrderResponse{
		Status:         res.Status,
		OrderID:        res.OrderID,
		Auth:           res.Auth,
		Customer:       res.Customer,
		Flags:          &res.Flags,
		Metadata:       &res.Metadata,
		NotificationID: res.NotificationID,
	})
}

// HandleSnapshot returns the current lifecycle snapshot for an order.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	snap, ok := h.orders.Get(orderID)
	if !ok {
		writeError(w, orderID, apperr.ErrOrderNotFound, "no snapshot for order")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleMetrics returns the pipeline counters.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type outageRequest struct {
	Outage bool `json:"outage"`
}

// HandleOutage flips the runtime outage flag. While set, every order takes
// the offline branch and the queue worker stands down.
func (h *Handler) HandleOutage(w http.ResponseWriter, r *http.Request) {
	var req outageRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, "", "invalid JSON")
		return
	}

	h.runtime.SetOutage(req.Outage)
	writeJSON(w, http.StatusOK, map[string]bool{"outage": h.runtime.Outage()})
}
