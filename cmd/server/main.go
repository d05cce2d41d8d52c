package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/order-fulfillment/internal/app"
	"github.com/iliamunaev/order-fulfillment/internal/config"
	"github.com/iliamunaev/order-fulfillment/internal/middleware"
)

const (
	defaultAddr    = ":8080"
	defaultWorkers = 2

	shutdownGrace = 30 * time.Second
)

func main() {
	logger, err := zap.NewProductionConfig().Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	a, err := app.New(app.Config{
		RedisURL:      os.Getenv(config.EnvRedisURL),
		TemplatesPath: os.Getenv(config.EnvTemplates),
		Workers:       envInt(config.EnvWorkers, defaultWorkers),
	}, logger)
	if err != nil {
		return err
	}

	addr := os.Getenv(config.EnvAddr)
	if addr == "" {
		addr = defaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a, logger),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := a.Worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// The listener is closed; give in-flight completions and the queue a
	// bounded window to settle before exiting.
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if cerr := a.Close(closeCtx); cerr != nil && err == nil {
		err = cerr
	}
	logger.Info("server exited")
	return err
}

func newRouter(a *app.App, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	a.Handler.Routes(r)
	return r
}

// envInt reads an integer from the environment, falling back when the
// variable is unset or not a number.
func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
