package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAlreadyLiked = errors.New("post already liked by this user")
	ErrNotLiked     = errors.New("post not liked by this user")
)

type LikesRepo struct {
	pool *pgxpool.Pool
}

func NewLikesRepo(pool *pgxpool.Pool) *LikesRepo {
	return &LikesRepo{pool: pool}
}

func (r *LikesRepo) Like(ctx context.Context, postID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO likes (post_id, user_id, created_at) VALUES ($1,$2,$3)`,
		postID, userID, time.Now().UTC(),
	)

	if err != nil {
		if IsUniqueViolation(err) {
			return ErrAlreadyLiked
		}
		return err
	}

	return nil
}

func (r *LikesRepo) Unlike(ctx context.Context, postID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotLiked
	}

	return nil
}

func (r *LikesRepo) CountForPost(ctx context.Context, postID string) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID,
	).Scan(&n)

	return n, err
}
