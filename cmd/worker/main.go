package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/dentalcare/internal/app"
	"github.com/jwalitptl/dentalcare/internal/config"
	"github.com/jwalitptl/dentalcare/internal/worker"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

// healthAddr serves health checks and metrics for the worker.
const healthAddr = ":8081"

func setupHealthCheck(a *app.App, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Storage.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: healthAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := app.NewLogger(cfg.Log).WithFields(map[string]interface{}{"component": "worker"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal(err, "Failed to initialize application")
	}
	defer a.Close()

	health := setupHealthCheck(a, log)
	defer health.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down...")
		cancel()
	}()

	// The worker reads the repositories directly, so it needs no state store.
	w := worker.NewSnapshotWorker(a.DirectStats, worker.SnapshotConfig{
		Interval:   cfg.Worker.SnapshotInterval,
		RunOnStart: cfg.Worker.RunOnStart,
	}, log)
	w.Start(ctx)
}
