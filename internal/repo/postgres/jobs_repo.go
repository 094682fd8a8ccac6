package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/job"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// CreateTx writes the job row inside the caller's transaction. Used as an
// outbox: the welcome job commits atomically with the registration.
func (r *JobsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	err := r.observe("jobs.create_tx", func() error {
		_, execErr := tx.Exec(ctx,
			`INSERT INTO jobs
			 (id, type, payload, status, attempts, max_attempts, run_at, idempotency_key, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			j.ID, j.Type, j.Payload, j.Status, j.Attempts, j.MaxAttempts, j.RunAt, j.IdempotencyKey, j.CreatedAt, j.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

// ClaimNext atomically takes the oldest runnable pending job. SKIP LOCKED
// keeps concurrent workers from fighting over the same row.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	var j job.Job

	err := r.observe("jobs.claim_next", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE jobs
			 SET status = 'processing', locked_at = now(), locked_by = $1, updated_at = now()
			 WHERE id = (
				 SELECT id FROM jobs
				 WHERE status = 'pending' AND run_at <= now()
				 ORDER BY run_at
				 LIMIT 1
				 FOR UPDATE SKIP LOCKED
			 )
			 RETURNING id, type, payload, status, attempts, max_attempts, run_at,
			           locked_at, locked_by, last_error, idempotency_key, created_at, updated_at`,
			workerID,
		).Scan(
			&j.ID, &j.Type, &j.Payload, &j.Status, &j.Attempts, &j.MaxAttempts, &j.RunAt,
			&j.LockedAt, &j.LockedBy, &j.LastError, &j.IdempotencyKey, &j.CreatedAt, &j.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrJobNotFound
		}

		return job.Job{}, err
	}

	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	return r.observe("jobs.mark_done", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'done', locked_at = NULL, locked_by = NULL, updated_at = now()
			 WHERE id = $1`,
			id,
		)
		return err
	})
}

// MarkRetry releases the job back to pending with a future run_at.
func (r *JobsRepo) MarkRetry(ctx context.Context, id string, runAt time.Time, lastError string) error {
	return r.observe("jobs.mark_retry", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'pending', attempts = attempts + 1, run_at = $2, last_error = $3,
			     locked_at = NULL, locked_by = NULL, updated_at = now()
			 WHERE id = $1`,
			id, runAt, lastError,
		)
		return err
	})
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id string, lastError string) error {
	return r.observe("jobs.mark_failed", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE jobs
			 SET status = 'failed', attempts = attempts + 1, last_error = $2,
			     locked_at = NULL, locked_by = NULL, updated_at = now()
			 WHERE id = $1`,
			id, lastError,
		)
		return err
	})
}
