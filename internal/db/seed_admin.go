package db

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the bootstrap admin account when the config names
// one. An account that already exists is left untouched, including its
// password.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existingID int64

	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1 OR email = $2`,
		cfg.AdminUsername, cfg.AdminEmail,
	).Scan(&existingID)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	var adminID int64

	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		cfg.AdminUsername, cfg.AdminEmail, hash,
	).Scan(&adminID)

	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE name = ANY($2)`,
		adminID, []string{user.RoleUser, user.RoleAdmin},
	)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
