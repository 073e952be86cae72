package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/bloghub/internal/domain/comment"
	"github.com/inkwell/bloghub/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
}

func NewCommentsRepo(pool *pgxpool.Pool) *CommentsRepo {
	return &CommentsRepo{pool: pool}
}

func (r *CommentsRepo) Create(ctx context.Context, postID, authorID, body string) (comment.Comment, error) {
	now := time.Now().UTC()

	c := comment.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, post_id, author_id, body, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.PostID, c.AuthorID, c.Body, c.CreatedAt, c.UpdatedAt,
	)

	if err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	var c comment.Comment

	err := r.pool.QueryRow(ctx,
		`SELECT id, post_id, author_id, body, created_at, updated_at
		 FROM comments
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return c, nil
}

// ListByPostCursor pages oldest-first so threads read top to bottom.
func (r *CommentsRepo) ListByPostCursor(
	ctx context.Context,
	postID string,
	limit int,
	afterCreatedAt time.Time,
	afterID string,
) (items []comment.Comment, nextCursor *string, hasMore bool, err error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, author_id, body, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		  AND deleted_at IS NULL
		  AND (created_at, id) > ($2, $3)
		ORDER BY created_at ASC, id ASC
		LIMIT $4
	`, postID, afterCreatedAt, afterID, limit+1)

	if err != nil {
		return nil, nil, false, err
	}

	defer rows.Close()

	items = make([]comment.Comment, 0, limit)

	for rows.Next() {
		var c comment.Comment

		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, nil, false, err
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	if len(items) > limit {
		items = items[:limit]
		hasMore = true

		last := items[len(items)-1]
		cur, cerr := utils.EncodeCommentCursor(last.CreatedAt, last.ID)

		if cerr == nil {
			nextCursor = &cur
		}
	}

	return items, nextCursor, hasMore, nil
}

func (r *CommentsRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE comments
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return comment.ErrNotFound
	}

	return nil
}
