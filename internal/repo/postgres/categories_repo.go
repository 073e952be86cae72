package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/bloghub/internal/domain/category"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
}

func NewCategoriesRepo(pool *pgxpool.Pool) *CategoriesRepo {
	return &CategoriesRepo{pool: pool}
}

func (r *CategoriesRepo) Create(ctx context.Context, name, slug, description string) (category.Category, error) {
	now := time.Now().UTC()

	c := category.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt,
	)

	if err != nil {
		if uniqueViolationOn(err, "categories_slug_key") {
			return category.Category{}, category.ErrSlugTaken
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories
		ORDER BY name ASC
	`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []category.Category

	for rows.Next() {
		var c category.Category

		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *CategoriesRepo) GetBySlug(ctx context.Context, slug string) (category.Category, error) {
	var c category.Category

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories
		WHERE slug = $1
	`, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}

	return nil
}
