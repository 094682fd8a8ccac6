package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/apperrors"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCommentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CommentsRepo {
	return &CommentsRepo{pool: pool, prom: prom}
}

func (r *CommentsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CommentsRepo) postExists(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, postID int64) error {
	var exists bool

	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`,
		postID,
	).Scan(&exists)

	if err != nil {
		return err
	}

	if !exists {
		return apperrors.NewNotFound("Post", "id", postID, post.ErrNotFound)
	}

	return nil
}

// Create attaches a comment to postID. The parent lookup and the insert run
// in one tx so the comment cannot land under a post deleted in between.
func (r *CommentsRepo) Create(ctx context.Context, postID int64, req comment.CreateCommentRequest) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.create", func() error {
		tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if txErr != nil {
			return txErr
		}
		defer func() { _ = tx.Rollback(ctx) }()

		var id int64

		lockErr := tx.QueryRow(ctx,
			`SELECT id FROM posts WHERE id = $1 FOR SHARE`,
			postID,
		).Scan(&id)

		if lockErr != nil {
			if errors.Is(lockErr, pgx.ErrNoRows) {
				return apperrors.NewNotFound("Post", "id", postID, post.ErrNotFound)
			}

			return lockErr
		}

		now := time.Now().UTC()

		scanErr := tx.QueryRow(ctx,
			`INSERT INTO comments (post_id, name, email, body, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)
			 RETURNING id, post_id, name, email, body, created_at, updated_at`,
			postID, req.Name, req.Email, req.Body, now,
		).Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.CreatedAt, &c.UpdatedAt)

		if scanErr != nil {
			return scanErr
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	var out []comment.Comment

	err := r.observe("comments.list_by_post", func() error {
		if exErr := r.postExists(ctx, r.pool, postID); exErr != nil {
			return exErr
		}

		rows, qErr := r.pool.Query(ctx,
			`SELECT id, post_id, name, email, body, created_at, updated_at
			 FROM comments
			 WHERE post_id = $1
			 ORDER BY id`,
			postID,
		)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			var c comment.Comment
			if scanErr := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.CreatedAt, &c.UpdatedAt); scanErr != nil {
				return scanErr
			}
			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []comment.Comment{}
	}

	return out, nil
}

// GetOwned fetches a comment addressed through a post path. Both entities
// must exist, and the comment's stored parent must be the addressed post;
// a mismatch is reported as ErrMismatchedPost, not a not-found.
func (r *CommentsRepo) GetOwned(ctx context.Context, postID, commentID int64) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.get_owned", func() error {
		if exErr := r.postExists(ctx, r.pool, postID); exErr != nil {
			return exErr
		}

		scanErr := r.pool.QueryRow(ctx,
			`SELECT id, post_id, name, email, body, created_at, updated_at
			 FROM comments
			 WHERE id = $1`,
			commentID,
		).Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.CreatedAt, &c.UpdatedAt)

		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return apperrors.NewNotFound("Comment", "id", commentID, comment.ErrNotFound)
			}

			return scanErr
		}

		if !c.BelongsTo(postID) {
			return comment.ErrMismatchedPost
		}

		return nil
	})

	if err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) Update(ctx context.Context, postID, commentID int64, req comment.UpdateCommentRequest) (comment.Comment, error) {
	// ownership check first; the same failure taxonomy as GetOwned applies
	if _, err := r.GetOwned(ctx, postID, commentID); err != nil {
		return comment.Comment{}, err
	}

	var c comment.Comment

	err := r.observe("comments.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE comments
			 SET name = $2, email = $3, body = $4, updated_at = $5
			 WHERE id = $1
			 RETURNING id, post_id, name, email, body, created_at, updated_at`,
			commentID, req.Name, req.Email, req.Body, time.Now().UTC(),
		).Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, apperrors.NewNotFound("Comment", "id", commentID, comment.ErrNotFound)
		}

		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) Delete(ctx context.Context, postID, commentID int64) error {
	if _, err := r.GetOwned(ctx, postID, commentID); err != nil {
		return err
	}

	return r.observe("comments.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFound("Comment", "id", commentID, comment.ErrNotFound)
		}

		return nil
	})
}
