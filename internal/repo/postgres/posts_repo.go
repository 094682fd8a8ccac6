package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/apperrors"
	"github.com/geocoder89/bloghub/internal/domain/category"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, prom: prom}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// lockCategory pins the referenced category for the duration of the tx. A
// concurrent category delete blocks until this tx commits, so a post can
// never land pointing at a category that failed to resolve.
func (r *PostsRepo) lockCategory(ctx context.Context, tx pgx.Tx, categoryID int64) error {
	var id int64

	err := tx.QueryRow(ctx,
		`SELECT id FROM categories WHERE id = $1 FOR SHARE`,
		categoryID,
	).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Category", "id", categoryID, category.ErrNotFound)
		}

		return err
	}

	return nil
}

func (r *PostsRepo) Create(ctx context.Context, req post.CreatePostRequest) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.create", func() error {
		tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if txErr != nil {
			return txErr
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if lockErr := r.lockCategory(ctx, tx, req.CategoryID); lockErr != nil {
			return lockErr
		}

		now := time.Now().UTC()

		scanErr := tx.QueryRow(ctx,
			`INSERT INTO posts (title, description, content, category_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)
			 RETURNING id, title, description, content, category_id, created_at, updated_at`,
			req.Title, req.Description, req.Content, req.CategoryID, now,
		).Scan(&p.ID, &p.Title, &p.Description, &p.Content, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)

		if scanErr != nil {
			return scanErr
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, description, content, category_id, created_at, updated_at
			 FROM posts
			 WHERE id = $1`,
			id,
		).Scan(&p.ID, &p.Title, &p.Description, &p.Content, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, apperrors.NewNotFound("Post", "id", id, post.ErrNotFound)
		}

		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListPostsFilter) ([]post.Post, int, error) {
	limit := filter.Limit

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset := filter.Offset

	if offset < 0 {
		offset = 0
	}

	var (
		out   []post.Post
		total int
	)

	err := r.observe("posts.list", func() error {
		countQuery := `SELECT COUNT(*) FROM posts`
		listQuery := `SELECT id, title, description, content, category_id, created_at, updated_at
			 FROM posts`

		args := []any{}

		if filter.CategoryID != nil {
			countQuery += ` WHERE category_id = $1`
			listQuery += ` WHERE category_id = $1`
			args = append(args, *filter.CategoryID)
		}

		if cErr := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); cErr != nil {
			return cErr
		}

		listQuery += ` ORDER BY id`

		if filter.CategoryID != nil {
			listQuery += ` LIMIT $2 OFFSET $3`
		} else {
			listQuery += ` LIMIT $1 OFFSET $2`
		}

		args = append(args, limit, offset)

		rows, qErr := r.pool.Query(ctx, listQuery, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			var p post.Post
			if scanErr := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Content, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); scanErr != nil {
				return scanErr
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	if out == nil {
		out = []post.Post{}
	}

	return out, total, nil
}

func (r *PostsRepo) ListByCategory(ctx context.Context, categoryID int64) ([]post.Post, error) {
	// the category must resolve even when it has no posts
	var exists bool

	err := r.observe("posts.list_by_category.category_check", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`,
			categoryID,
		).Scan(&exists)
	})

	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, apperrors.NewNotFound("Category", "id", categoryID, category.ErrNotFound)
	}

	// full set, no page cap: this listing returns every post in the category
	var out []post.Post

	err = r.observe("posts.list_by_category", func() error {
		rows, qErr := r.pool.Query(ctx,
			`SELECT id, title, description, content, category_id, created_at, updated_at
			 FROM posts
			 WHERE category_id = $1
			 ORDER BY id`,
			categoryID,
		)

		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			var p post.Post
			if scanErr := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Content, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); scanErr != nil {
				return scanErr
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []post.Post{}
	}

	return out, nil
}

func (r *PostsRepo) Update(ctx context.Context, id int64, req post.UpdatePostRequest) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.update", func() error {
		tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if txErr != nil {
			return txErr
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if lockErr := r.lockCategory(ctx, tx, req.CategoryID); lockErr != nil {
			return lockErr
		}

		scanErr := tx.QueryRow(ctx,
			`UPDATE posts
			 SET title = $2, description = $3, content = $4, category_id = $5, updated_at = $6
			 WHERE id = $1
			 RETURNING id, title, description, content, category_id, created_at, updated_at`,
			id, req.Title, req.Description, req.Content, req.CategoryID, time.Now().UTC(),
		).Scan(&p.ID, &p.Title, &p.Description, &p.Content, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)

		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return apperrors.NewNotFound("Post", "id", id, post.ErrNotFound)
			}

			return scanErr
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("posts.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFound("Post", "id", id, post.ErrNotFound)
		}

		return nil
	})
}
