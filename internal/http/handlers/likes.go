package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/http/middlewares"
	"github.com/inkwell/bloghub/internal/repo/postgres"
	"github.com/inkwell/bloghub/internal/utils"
)

type LikeStore interface {
	Like(ctx context.Context, postID, userID string) error
	Unlike(ctx context.Context, postID, userID string) error
	CountForPost(ctx context.Context, postID string) (int, error)
}

func (h *PostsHandler) Like(ctx *gin.Context) {
	postID, userID, ok := h.likeTarget(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	target, err := h.store.GetByID(cctx, postID)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not like post")
		return
	}

	// drafts stay invisible: liking one must not confirm it exists
	if target.Status != post.StatusPublished && !h.canManage(ctx, target) {
		RespondNotFound(ctx, "Post not found")
		return
	}

	err = h.likes.Like(cctx, postID, userID)

	if err != nil {
		if errors.Is(err, postgres.ErrAlreadyLiked) {
			RespondConflict(ctx, "Post already liked")
			return
		}
		RespondInternal(ctx, "Could not like post")
		return
	}

	h.listCache.InvalidateAll(cctx)

	count, err := h.likes.CountForPost(cctx, postID)

	if err != nil {
		// the like landed; report it without the count
		ctx.JSON(http.StatusCreated, gin.H{"liked": true})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"liked": true, "likeCount": count})
}

func (h *PostsHandler) Unlike(ctx *gin.Context) {
	postID, userID, ok := h.likeTarget(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.likes.Unlike(cctx, postID, userID)

	if err != nil {
		if errors.Is(err, postgres.ErrNotLiked) {
			RespondNotFound(ctx, "Like not found")
			return
		}
		RespondInternal(ctx, "Could not unlike post")
		return
	}

	h.listCache.InvalidateAll(cctx)

	ctx.Status(http.StatusNoContent)
}

func (h *PostsHandler) likeTarget(ctx *gin.Context) (postID, userID string, ok bool) {
	postID = ctx.Param("postId")

	if !utils.IsUUID(postID) {
		RespondBadRequest(ctx, "postId must be a UUID", nil)
		return "", "", false
	}

	userID, idOK := middlewares.UserIDFromContext(ctx)

	if !idOK || userID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return "", "", false
	}

	return postID, userID, true
}
