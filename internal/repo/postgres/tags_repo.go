package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/bloghub/internal/domain/tag"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TagsRepo struct {
	pool *pgxpool.Pool
}

func NewTagsRepo(pool *pgxpool.Pool) *TagsRepo {
	return &TagsRepo{pool: pool}
}

func (r *TagsRepo) Create(ctx context.Context, name, slug string) (tag.Tag, error) {
	t := tag.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO tags (id, name, slug, created_at) VALUES ($1,$2,$3,$4)`,
		t.ID, t.Name, t.Slug, t.CreatedAt,
	)

	if err != nil {
		if uniqueViolationOn(err, "tags_slug_key") {
			return tag.Tag{}, tag.ErrSlugTaken
		}
		return tag.Tag{}, err
	}

	return t, nil
}

func (r *TagsRepo) List(ctx context.Context) ([]tag.Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, created_at
		FROM tags
		ORDER BY name ASC
	`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []tag.Tag

	for rows.Next() {
		var t tag.Tag

		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *TagsRepo) Delete(ctx context.Context, id string) error {
	tg, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tg.RowsAffected() == 0 {
		return tag.ErrNotFound
	}

	return nil
}
