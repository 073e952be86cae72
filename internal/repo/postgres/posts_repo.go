package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/observability"
	"github.com/inkwell/bloghub/internal/utils"
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

// Create inserts the post and its tag links in one tx. A unique violation on
// the slug surfaces as post.ErrSlugTaken so the caller can retry with a new slug.
func (r *PostsRepo) Create(ctx context.Context, authorID, slug string, req post.CreatePostRequest) (post.Post, error) {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = post.StatusDraft
	}

	p := post.Post{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Slug:       slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.observe("posts.create", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx,
			`INSERT INTO posts (id, author_id, category_id, title, slug, excerpt, content, status, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, p.AuthorID, p.CategoryID, p.Title, p.Slug, p.Excerpt, p.Content, p.Status, p.CreatedAt, p.UpdatedAt,
		)

		if err != nil {
			return err
		}

		if err := replaceTagLinks(ctx, tx, p.ID, req.TagIDs); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if uniqueViolationOn(err, "posts_slug_key") {
			return post.Post{}, post.ErrSlugTaken
		}
		return post.Post{}, err
	}

	// re-read so the response carries tag slugs and like count, same shape as GetByID
	return r.GetByID(ctx, p.ID)
}

func replaceTagLinks(ctx context.Context, tx pgx.Tx, postID string, tagIDs []string) error {
	_, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID)

	if err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			postID, tagID,
		)

		if err != nil {
			return err
		}
	}

	return nil
}

const postColumns = `
	p.id, p.author_id, p.category_id, p.title, p.slug, p.excerpt, p.content, p.status,
	p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	COALESCE((
		SELECT array_agg(t.slug ORDER BY t.slug)
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = p.id
	), '{}') AS tag_slugs`

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post

	err := row.Scan(
		&p.ID, &p.AuthorID, &p.CategoryID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.LikeCount, &p.Tags,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (post.Post, error) {
	var p post.Post
	var err error

	err = r.observe("posts.get_by_id", func() error {
		p, err = scanPost(r.pool.QueryRow(ctx,
			`SELECT `+postColumns+` FROM posts p WHERE p.id = $1 AND p.deleted_at IS NULL`, id))
		return err
	})

	return p, err
}

func (r *PostsRepo) GetBySlug(ctx context.Context, slug string) (post.Post, error) {
	var p post.Post
	var err error

	err = r.observe("posts.get_by_slug", func() error {
		p, err = scanPost(r.pool.QueryRow(ctx,
			`SELECT `+postColumns+` FROM posts p WHERE p.slug = $1 AND p.deleted_at IS NULL`, slug))
		return err
	})

	return p, err
}

// ListCursor pages newest-first with a (created_at, id) keyset.
func (r *PostsRepo) ListCursor(
	ctx context.Context,
	filter post.ListPostsFilter,
	afterCreatedAt time.Time,
	afterID string,
) (items []post.Post, nextCursor *string, hasMore bool, err error) {
	base := `SELECT ` + postColumns + ` FROM posts p`

	var (
		conds   = []string{"p.deleted_at IS NULL"}
		args    []interface{}
		argsPos = 1
	)

	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", argsPos))
		args = append(args, *filter.AuthorID)
		argsPos++
	}

	if filter.CategoryID != nil {
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", argsPos))
		args = append(args, *filter.CategoryID)
		argsPos++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("p.status = $%d", argsPos))
		args = append(args, *filter.Status)
		argsPos++
	}

	if filter.TagSlug != nil {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t.slug = $%d)",
			argsPos))
		args = append(args, *filter.TagSlug)
		argsPos++
	}

	// DESC keyset: fetch rows "older" than cursor
	conds = append(conds, fmt.Sprintf("(p.created_at, p.id) < ($%d, $%d)", argsPos, argsPos+1))
	args = append(args, afterCreatedAt, afterID)
	argsPos += 2

	limit := filter.Limit

	if limit <= 0 {
		limit = 20
	}

	q := base + " WHERE " + strings.Join(conds, " AND ")
	q += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d", argsPos)
	args = append(args, limit+1)

	err = r.observe("posts.list_cursor", func() error {
		rows, qerr := r.pool.Query(ctx, q, args...)

		if qerr != nil {
			return qerr
		}

		defer rows.Close()

		items = make([]post.Post, 0, limit)

		for rows.Next() {
			p, serr := scanPost(rows)

			if serr != nil {
				return serr
			}

			items = append(items, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, nil, false, err
	}

	if len(items) > limit {
		items = items[:limit]
		hasMore = true

		last := items[len(items)-1]
		cur, cerr := utils.EncodePostCursor(last.CreatedAt, last.ID)

		if cerr == nil {
			nextCursor = &cur
		}
	}

	return items, nextCursor, hasMore, nil
}

func (r *PostsRepo) Update(ctx context.Context, id, slug string, req post.UpdatePostRequest) (post.Post, error) {
	status := req.Status

	if status == "" {
		status = post.StatusDraft
	}

	err := r.observe("posts.update", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		tag, err := tx.Exec(ctx,
			`UPDATE posts
			 SET title = $2,
			     slug = $3,
			     excerpt = $4,
			     content = $5,
			     status = $6,
			     category_id = $7,
			     updated_at = NOW()
			 WHERE id = $1 AND deleted_at IS NULL`,
			id, req.Title, slug, req.Excerpt, req.Content, status, req.CategoryID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return post.ErrNotFound
		}

		if err := replaceTagLinks(ctx, tx, id, req.TagIDs); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if uniqueViolationOn(err, "posts_slug_key") {
			return post.Post{}, post.ErrSlugTaken
		}
		return post.Post{}, err
	}

	// re-read so the response carries tag slugs and like count, same shape as GetByID
	return r.GetByID(ctx, id)
}

func (r *PostsRepo) SoftDelete(ctx context.Context, id string) error {
	return r.observe("posts.soft_delete", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE posts
			SET deleted_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return post.ErrNotFound
		}

		return nil
	})
}
