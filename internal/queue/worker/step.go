package worker

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/job"
	"github.com/geocoder89/bloghub/internal/jobs"
	"github.com/geocoder89/bloghub/internal/notifications"
)

// ProcessOne claims and settles a single job. It reports whether a job was
// available; the error covers infrastructure trouble, not job failure.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	w.metrics.IncClaimed()
	started := time.Now()

	err = w.execute(ctx, j)

	w.metrics.ObserveDuration(time.Since(started))

	if err != nil {
		w.handleFailure(ctx, j, err)
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.metrics.IncDone()

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	switch j.Type {
	case jobs.TypeUserWelcome:
		payload, err := jobs.DecodeWelcome(j)

		if err != nil {
			return err
		}

		return w.notifier.SendWelcome(ctx, notifications.SendWelcomeInput{
			Username: payload.Username,
			Email:    payload.Email,
			UserID:   payload.UserID,
		})

	default:
		return jobs.ErrUnknownJobType
	}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) {
	// a payload that cannot decode will never succeed, dead-letter it now
	if errors.Is(execErr, jobs.ErrUnknownJobType) || errors.Is(execErr, jobs.ErrInvalidJobPayload) {
		w.deadLetter(ctx, j, execErr)
		return
	}

	// MarkRetry/MarkFailed bump attempts, so compare against the next value
	if j.Attempts+1 >= j.MaxAttempts {
		w.deadLetter(ctx, j, execErr)
		return
	}

	runAt := time.Now().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.MarkRetry(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("mark retry failed", "jobId", j.ID, "err", err)
		return
	}

	w.metrics.IncRetried()
	w.log.Warn("job retry scheduled", "jobId", j.ID, "type", j.Type, "attempts", j.Attempts+1, "runAt", runAt, "err", execErr)
}

func (w *Worker) deadLetter(ctx context.Context, j job.Job, execErr error) {
	if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
		w.log.Error("mark failed failed", "jobId", j.ID, "err", err)
		return
	}

	w.metrics.IncFailed()
	w.metrics.IncDeadLettered()
	w.log.Error("job dead-lettered", "jobId", j.ID, "type", j.Type, "attempts", j.Attempts+1, "err", execErr)
}
