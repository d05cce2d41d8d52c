// Package pipeline orchestrates one order through config resolution,
// caching, audit, payment, notification, and delayed finalization.
//
// Process returns exactly once per invocation. The only collaborator
// failure it surfaces is a payment failure; configuration, audit,
// notification, and queue problems are logged, counted, and absorbed so
// the order keeps moving.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliamunaev/order-fulfillment/internal/audit"
	"github.com/iliamunaev/order-fulfillment/internal/config"
	"github.com/iliamunaev/order-fulfillment/internal/metrics"
	"github.com/iliamunaev/order-fulfillment/internal/model"
	"github.com/iliamunaev/order-fulfillment/internal/state"
	"github.com/iliamunaev/order-fulfillment/internal/store"
)

// DefaultFlag classifies orders whose caller supplied no flag.
const DefaultFlag = "standard"

// PaymentGateway authorizes charges.
type PaymentGateway interface {
	Charge(ctx context.Context, ch model.Charge) (model.Auth, error)
}

// NotificationSender dispatches customer notifications.
type NotificationSender interface {
	Send(ctx context.Context, msg model.Message) (string, error)
}

// WorkQueue accepts deferred jobs for later replay.
type WorkQueue interface {
	Enqueue(ctx context.Context, job model.Job) error
}

// Deps carries the pipeline's collaborators and shared state.
// Loader, Customers, Orders, Gateway, Sender, and Queue must be non-nil.
type Deps struct {
	Loader    *config.Loader
	Customers *store.Customers
	Orders    *store.Orders
	Runtime   *state.Runtime
	Metrics   *metrics.Collector
	Gateway   PaymentGateway
	Sender    NotificationSender
	Queue     WorkQueue
	Log       *zap.Logger
}

// Pipeline processes orders. Safe for concurrent use.
type Pipeline struct {
	loader    *config.Loader
	customers *store.Customers
	orders    *store.Orders
	runtime   *state.Runtime
	collector *metrics.Collector
	gateway   PaymentGateway
	sender    NotificationSender
	queue     WorkQueue
	log       *zap.Logger

	finalizers sync.WaitGroup
}

// New creates a pipeline. Nil Runtime, Metrics, and Log are replaced with
// usable zero dependencies.
func New(d Deps) *Pipeline {
	if d.Runtime == nil {
		d.Runtime = &state.Runtime{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Pipeline{
		loader:    d.Loader,
		customers: d.Customers,
		orders:    d.Orders,
		runtime:   d.Runtime,
		collector: d.Metrics,
		gateway:   d.Gateway,
		sender:    d.Sender,
		queue:     d.Queue,
		log:       d.Log,
	}
}

// Process runs one order through the workflow and returns its result.
//
// The offline branch (configured offline mode or the runtime outage flag)
// defers the order to the work queue and reports status "queued". The
// online branch charges the gateway, and on success notifies the customer
// and schedules delayed finalization; the result is delivered strictly
// before the finalizer moves the cached snapshot to completed.
//
// A payment failure is returned to the caller after a retry job is
// enqueued. No other collaborator failure changes what the caller sees.
func (p *Pipeline) Process(ctx context.Context, orderID string, ov model.Overrides) (*model.Result, error) {
	if orderID == "" {
		return nil, errors.New("process: empty order id")
	}

	count := p.runtime.BeginInvocation(orderID)
	p.collector.RecordProcessed()

	meta := model.Metadata{
		ProcessedAt: time.Now(),
		StartedBy:   resolveActor(ov.Actor),
		Flag:        ov.Flag,
	}
	p.log.Info("processing order",
		zap.String("order_id", orderID),
		zap.String("started_by", meta.StartedBy),
		zap.Int64("invocation", count),
	)

	cfg := p.loader.Load(ov.ConfigPath)

	customer := p.customers.GetOrCreate(orderID, ov.Email)

	flag := ov.Flag
	if flag == "" {
		flag = DefaultFlag
	}
	p.orders.Set(model.StartedSnapshot(orderID, meta.ProcessedAt, flag))

	if err := audit.Append(cfg.AuditPath, audit.Start(orderID)); err != nil {
		p.log.Error("audit append failed", zap.String("order_id", orderID), zap.Error(err))
	}

	if cfg.OfflineMode || p.runtime.Outage() {
		p.collector.RecordQueuedOffline()
		p.enqueue(ctx, newJob(model.JobOffline, orderID, ov, ""))
		p.log.Info("order deferred offline", zap.String("order_id", orderID))
		return &model.Result{
			Status:   model.StatusQueued,
			OrderID:  orderID,
			Flags:    p.flags(),
			Metadata: meta,
		}, nil
	}

	amount := ov.Amount
	if amount == 0 {
		amount = cfg.DefaultAmount
	}

	chargeCtx, cancel := context.WithTimeout(ctx, cfg.PaymentTimeout())
	auth, err := p.gateway.Charge(chargeCtx, model.Charge{OrderID: orderID, Amount: amount})
	cancel()
	if err != nil {
		p.collector.RecordPaymentError()
		p.log.Error("payment failed",
			zap.String("order_id", orderID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		p.collector.RecordRetryQueued()
		p.enqueue(ctx, newJob(model.JobRetry, orderID, ov, err.Error()))
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}

	p.orders.Set(model.ChargedSnapshot(orderID, auth.AuthCode))

	notifyCtx, cancel := context.WithTimeout(ctx, cfg.NotifyTimeout())
	notificationID, err := p.sender.Send(notifyCtx, model.Message{
		To:       customer.Email,
		Template: ov.Template,
		Context:  model.MessageContext{OrderID: orderID, AuthCode: auth.AuthCode},
	})
	cancel()
	if err != nil {
		p.collector.RecordNotifyError()
		p.log.Error("notification failed", zap.String("order_id", orderID), zap.Error(err))
		notificationID = ""
	}

	p.finalizers.Add(1)
	go p.finalize(orderID, cfg)

	return &model.Result{
		Status:         model.StatusOK,
		OrderID:        orderID,
		Auth:           &auth,
		Customer:       &customer,
		Flags:          p.flags(),
		Metadata:       meta,
		NotificationID: notificationID,
	}, nil
}

// finalize runs after the completion delay: it counts the completion,
// moves the cached snapshot to completed, and appends the DONE audit line.
func (p *Pipeline) finalize(orderID string, cfg config.Config) {
	defer p.finalizers.Done()

	time.Sleep(cfg.CompletionDelay())

	p.collector.RecordCompleted()
	p.orders.Set(model.CompletedSnapshot(orderID, time.Now()))
	if err := audit.Append(cfg.AuditPath, audit.Done(orderID)); err != nil {
		p.log.Error("audit append failed", zap.String("order_id", orderID), zap.Error(err))
	}
	p.log.Debug("order finalized", zap.String("order_id", orderID))
}

// Close waits for in-flight finalizers, or gives up when ctx expires.
// Finalizers are never canceled; an abandoned wait only means they outlive
// the caller by at most one completion delay.
func (p *Pipeline) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.finalizers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline close: %w", ctx.Err())
	}
}

// enqueue hands a job to the work queue. The job must outlive the request,
// so cancellation of the caller's context does not abort it. Failures are
// logged and counted; the order's outcome is already decided by then.
func (p *Pipeline) enqueue(ctx context.Context, job model.Job) {
	if err := p.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		p.collector.RecordQueueError()
		p.log.Error("enqueue failed",
			zap.String("order_id", job.OrderID),
			zap.String("job_type", job.Type),
			zap.Error(err),
		)
	}
}

// flags snapshots the shared runtime state at result-delivery time.
func (p *Pipeline) flags() model.Flags {
	return model.Flags{
		Outage:  p.runtime.Outage(),
		Retries: p.runtime.Retries(),
	}
}

func resolveActor(override string) string {
	if override != "" {
		return override
	}
	return config.DefaultActor()
}

func newJob(jobType, orderID string, ov model.Overrides, reason string) model.Job {
	return model.Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		OrderID:    orderID,
		Payload:    ov,
		Reason:     reason,
		EnqueuedAt: time.Now(),
	}
}
