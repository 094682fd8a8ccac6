package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/job"
	"github.com/geocoder89/bloghub/internal/notifications"
	"github.com/geocoder89/bloghub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, runAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
}

// Worker drains the jobs outbox: claim, execute, settle. One claimed job is
// settled exactly once, as done, retried with backoff, or dead-lettered.
type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	log      *slog.Logger
	metrics  *observability.JobMetrics

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, log *slog.Logger, metrics *observability.JobMetrics) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	if cfg.WorkerID == "" {
		host, _ := os.Hostname()
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}

	if metrics == nil {
		metrics = observability.NewJobMetrics()
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
	}
}

func (w *Worker) Metrics() *observability.JobMetrics {
	return w.metrics
}

// Run polls until ctx is cancelled. Each tick drains every job that is due
// instead of processing one per tick.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.Info("worker started", "workerId", w.cfg.WorkerID, "pollInterval", w.cfg.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker shutting down")
			return nil

		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("job processing error", "err", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
