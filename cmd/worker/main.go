package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/db"
	"github.com/geocoder89/bloghub/internal/notifications"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/queue/worker"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	jobsRepo := postgres.NewJobsRepo(pool, nil)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{},
	)

	w := worker.New(worker.Config{
		PollInterval: 2 * time.Second,
	}, jobsRepo, notifier, log, observability.NewJobMetrics())

	// liveness/readiness on a side server
	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)

	snap := w.Metrics().Snapshot()
	log.Info("worker shutdown complete",
		"claimed", snap.Claimed,
		"done", snap.Done,
		"retried", snap.Retried,
		"deadLettered", snap.DeadLettered,
	)
}
