package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/apperrors"
	"github.com/geocoder89/bloghub/internal/domain/category"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, prom: prom}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error) {
	now := time.Now().UTC()

	var c category.Category

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO categories (name, description, created_at, updated_at)
			 VALUES ($1, $2, $3, $3)
			 RETURNING id, name, description, created_at, updated_at`,
			req.Name, req.Description, now,
		).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id int64) (category.Category, error) {
	var c category.Category

	err := r.observe("categories.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, description, created_at, updated_at
			 FROM categories
			 WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, apperrors.NewNotFound("Category", "id", id, category.ErrNotFound)
		}

		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	var out []category.Category

	err := r.observe("categories.list", func() error {
		rows, qErr := r.pool.Query(ctx,
			`SELECT id, name, description, created_at, updated_at
			 FROM categories
			 ORDER BY id`,
		)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			var c category.Category
			if scanErr := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); scanErr != nil {
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
		out = []category.Category{}
	}

	return out, nil
}

func (r *CategoriesRepo) Update(ctx context.Context, id int64, req category.UpdateCategoryRequest) (category.Category, error) {
	var c category.Category

	err := r.observe("categories.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE categories
			 SET name = $2, description = $3, updated_at = $4
			 WHERE id = $1
			 RETURNING id, name, description, created_at, updated_at`,
			id, req.Name, req.Description, time.Now().UTC(),
		).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, apperrors.NewNotFound("Category", "id", id, category.ErrNotFound)
		}

		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("categories.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFound("Category", "id", id, category.ErrNotFound)
		}

		return nil
	})
}
