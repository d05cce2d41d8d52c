// Package app assembles the order-fulfillment components into one runnable
// unit: stores, runtime state, metrics, queue, collaborators, pipeline,
// queue worker, and the HTTP handler.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliamunaev/order-fulfillment/internal/config"
	"github.com/iliamunaev/order-fulfillment/internal/metrics"
	"github.com/iliamunaev/order-fulfillment/internal/model"
	"github.com/iliamunaev/order-fulfillment/internal/pipeline"
	"github.com/iliamunaev/order-fulfillment/internal/service/notify"
	"github.com/iliamunaev/order-fulfillment/internal/service/payment"
	"github.com/iliamunaev/order-fulfillment/internal/service/queue"
	"github.com/iliamunaev/order-fulfillment/internal/service/worker"
	"github.com/iliamunaev/order-fulfillment/internal/state"
	"github.com/iliamunaev/order-fulfillment/internal/store"
	httptransport "github.com/iliamunaev/order-fulfillment/internal/transport/http"
)

// Config tunes the assembly.
type Config struct {
	RedisURL       string        // non-empty selects the Redis queue over the in-process one
	TemplatesPath  string        // optional notification catalog file
	Workers        int           // queue poller count
	RequestTimeout time.Duration // per-request processing bound
	GatewayLatency time.Duration // simulated payment latency
	SenderLatency  time.Duration // simulated dispatch latency
}

// workQueue is the union of what the pipeline and the worker need from a
// queue, plus teardown. Both queue implementations satisfy it.
type workQueue interface {
	Enqueue(ctx context.Context, job model.Job) error
	Dequeue(ctx context.Context) (*model.Job, error)
	EnqueueDelayed(ctx context.Context, job model.Job, delay time.Duration) error
	Close() error
}

// App holds the wired components.
type App struct {
	Runtime  *state.Runtime
	Metrics  *metrics.Collector
	Orders   *store.Orders
	Pipeline *pipeline.Pipeline
	Worker   *worker.Worker
	Handler  *httptransport.Handler

	queue workQueue
	log   *zap.Logger
}

// New wires an App. The queue is in-process unless cfg.RedisURL is set.
func New(cfg Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.GatewayLatency <= 0 {
		cfg.GatewayLatency = 150 * time.Millisecond
	}
	if cfg.SenderLatency <= 0 {
		cfg.SenderLatency = 200 * time.Millisecond
	}

	var q workQueue
	if cfg.RedisURL != "" {
		rq, err := queue.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		q = rq
		log.Info("using redis work queue")
	} else {
		q = queue.NewMemory()
		log.Info("using in-process work queue")
	}

	sender := notify.NewSender(cfg.SenderLatency, log)
	if cfg.TemplatesPath != "" {
		// A bad catalog keeps the built-ins, mirroring how an unreadable
		// config file degrades instead of failing.
		if err := sender.LoadCatalog(cfg.TemplatesPath); err != nil {
			log.Warn("notification catalog rejected, using built-ins", zap.Error(err))
		}
	}

	runtime := &state.Runtime{}
	stats := metrics.New()
	orders := store.NewOrders()

	p := pipeline.New(pipeline.Deps{
		Loader:    config.NewLoader(log),
		Customers: store.NewCustomers(),
		Orders:    orders,
		Runtime:   runtime,
		Metrics:   stats,
		Gateway:   payment.NewSimulator(cfg.GatewayLatency),
		Sender:    sender,
		Queue:     q,
		Log:       log,
	})

	w := worker.New(worker.Deps{
		Queue:   q,
		Proc:    p,
		Runtime: runtime,
		Metrics: stats,
		Log:     log,
	}, worker.Config{
		Pollers: cfg.Workers,
	})

	h := httptransport.New(p, orders, runtime, stats, cfg.RequestTimeout)

	return &App{
		Runtime:  runtime,
		Metrics:  stats,
		Orders:   orders,
		Pipeline: p,
		Worker:   w,
		Handler:  h,
		queue:    q,
		log:      log,
	}, nil
}

// Close drains in-flight finalizers and releases the queue.
func (a *App) Close(ctx context.Context) error {
	err := a.Pipeline.Close(ctx)
	if cerr := a.queue.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
