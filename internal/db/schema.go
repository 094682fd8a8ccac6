package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// statements are idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,

	`CREATE TABLE IF NOT EXISTS roles (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		CONSTRAINT roles_name_key UNIQUE (name)
	)`,

	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		role_id BIGINT NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, role_id)
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT categories_name_key UNIQUE (name)
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		content     TEXT NOT NULL,
		category_id BIGINT NOT NULL REFERENCES categories (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT posts_title_key UNIQUE (title)
	)`,

	`CREATE INDEX IF NOT EXISTS posts_category_id_idx ON posts (category_id)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGSERIAL PRIMARY KEY,
		post_id    BIGINT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		type            TEXT NOT NULL,
		payload         JSONB NOT NULL,
		status          TEXT NOT NULL DEFAULT 'pending',
		attempts        INT NOT NULL DEFAULT 0,
		max_attempts    INT NOT NULL DEFAULT 10,
		run_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		locked_at       TIMESTAMPTZ,
		locked_by       TEXT,
		last_error      TEXT,
		idempotency_key TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT jobs_idempotency_key_key UNIQUE (idempotency_key)
	)`,

	`CREATE INDEX IF NOT EXISTS jobs_status_run_at_idx ON jobs (status, run_at)`,

	`INSERT INTO roles (name) VALUES ('ROLE_USER'), ('ROLE_ADMIN')
	 ON CONFLICT (name) DO NOTHING`,
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
