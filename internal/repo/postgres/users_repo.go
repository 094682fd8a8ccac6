package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/job"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/jobs"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
	jobs *JobsRepo
}

// jobsRepo may be nil; registration then commits without a welcome job.
func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom, jobsRepo *JobsRepo) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom, jobs: jobsRepo}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// GetByUsernameOrEmail looks a credential up by either identifier. Roles are
// not loaded here; login only needs the hash and the canonical username.
func (r *UsersRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_identifier", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, created_at, updated_at
			 FROM users
			 WHERE username = $1 OR email = $1`,
			identifier,
		).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool

	err := r.observe("users.exists_by_username", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
			username,
		).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := r.observe("users.exists_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
			email,
		).Scan(&exists)
	})

	return exists, err
}

// Create inserts the credential, its default role and the welcome
// notification job in one transaction. The unique constraints back up the
// caller's exists checks, so two concurrent registrations cannot both land:
// the second surfaces as ErrUsernameTaken / ErrEmailTaken off the 23505.
func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	var u user.User

	err := r.observe("users.create", func() error {
		tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if txErr != nil {
			return txErr
		}
		defer func() { _ = tx.Rollback(ctx) }()

		now := time.Now().UTC()

		scanErr := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4)
			 RETURNING id, username, email, password_hash, created_at, updated_at`,
			username, email, passwordHash, now,
		).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)

		if scanErr != nil {
			if IsUniqueViolation(scanErr) {
				if violatedConstraint(scanErr) == "users_email_key" {
					return user.ErrEmailTaken
				}
				return user.ErrUsernameTaken
			}

			return scanErr
		}

		_, roleErr := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id)
			 SELECT $1, id FROM roles WHERE name = $2`,
			u.ID, user.RoleUser,
		)

		if roleErr != nil {
			return roleErr
		}

		if r.jobs != nil {
			payload, pErr := jobs.WelcomePayload{
				Username: u.Username,
				Email:    u.Email,
				UserID:   u.ID,
			}.JSON()

			if pErr != nil {
				return pErr
			}

			key := "user:welcome:" + u.Username

			if _, jErr := r.jobs.CreateTx(ctx, tx, job.CreateRequest{
				Type:           jobs.TypeUserWelcome,
				Payload:        payload,
				RunAt:          now,
				MaxAttempts:    10,
				IdempotencyKey: &key,
			}); jErr != nil {
				return jErr
			}
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return user.User{}, err
	}

	u.Roles = []string{user.RoleUser}

	return u, nil
}

// RolesByUsername resolves the subject's current roles. The guard calls this
// on every request, so a role change takes effect on the next request rather
// than living inside old tokens.
func (r *UsersRepo) RolesByUsername(ctx context.Context, username string) ([]string, error) {
	var roles []string

	err := r.observe("users.roles_by_username", func() error {
		rows, qErr := r.pool.Query(ctx,
			`SELECT r.name
			 FROM roles r
			 JOIN user_roles ur ON ur.role_id = r.id
			 JOIN users u ON u.id = ur.user_id
			 WHERE u.username = $1
			 ORDER BY r.name`,
			username,
		)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if scanErr := rows.Scan(&name); scanErr != nil {
				return scanErr
			}
			roles = append(roles, name)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		// no role rows at all may mean the subject itself is gone
		exists, exErr := r.ExistsByUsername(ctx, username)
		if exErr != nil {
			return nil, exErr
		}
		if !exists {
			return nil, user.ErrNotFound
		}
	}

	return roles, nil
}
