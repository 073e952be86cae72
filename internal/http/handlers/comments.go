package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/domain/comment"
	"github.com/inkwell/bloghub/internal/domain/job"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/http/middlewares"
	"github.com/inkwell/bloghub/internal/jobs"
	"github.com/inkwell/bloghub/internal/utils"
)

type CommentStore interface {
	Create(ctx context.Context, postID, authorID, body string) (comment.Comment, error)
	GetByID(ctx context.Context, id string) (comment.Comment, error)
	ListByPostCursor(ctx context.Context, postID string, limit int, afterCreatedAt time.Time, afterID string) ([]comment.Comment, *string, bool, error)
	SoftDelete(ctx context.Context, id string) error
}

type PostGetter interface {
	GetByID(ctx context.Context, id string) (post.Post, error)
}

type CommentsHandler struct {
	store    CommentStore
	posts    PostGetter
	enqueuer JobEnqueuer
}

func NewCommentsHandler(store CommentStore, posts PostGetter, enqueuer JobEnqueuer) *CommentsHandler {
	return &CommentsHandler{
		store:    store,
		posts:    posts,
		enqueuer: enqueuer,
	}
}

func (h *CommentsHandler) Create(ctx *gin.Context) {
	postID := ctx.Param("postId")

	if !utils.IsUUID(postID) {
		RespondBadRequest(ctx, "postId must be a UUID", nil)
		return
	}

	authorID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || authorID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req comment.CreateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	parent, err := h.posts.GetByID(cctx, postID)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not create comment")
		return
	}

	if parent.Status != post.StatusPublished {
		// drafts take no comments
		RespondNotFound(ctx, "Post not found")
		return
	}

	created, err := h.store.Create(cctx, postID, authorID, req.Body)

	if err != nil {
		RespondInternal(ctx, "Could not create comment")
		return
	}

	// the author commenting on their own post needs no notification
	if parent.AuthorID != authorID {
		h.enqueueNotification(cctx, ctx, created, parent)
	}

	ctx.JSON(http.StatusCreated, gin.H{"comment": created})
}

type commentListResponse struct {
	Items      []comment.Comment `json:"items"`
	NextCursor *string           `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

func (h *CommentsHandler) ListByPost(ctx *gin.Context) {
	postID := ctx.Param("postId")

	if !utils.IsUUID(postID) {
		RespondBadRequest(ctx, "postId must be a UUID", nil)
		return
	}

	limit := parseLimit(ctx.Query("limit"), 20, 100)

	// ASC keyset starts from the zero value and walks forward
	var afterCreatedAt time.Time
	afterID := "00000000-0000-0000-0000-000000000000"

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeCommentCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	parent, err := h.posts.GetByID(cctx, postID)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not list comments")
		return
	}

	// a draft's comments are as invisible as the draft itself
	if parent.Status != post.StatusPublished && !h.canSeePost(ctx, parent) {
		RespondNotFound(ctx, "Post not found")
		return
	}

	items, nextCursor, hasMore, err := h.store.ListByPostCursor(cctx, postID, limit, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list comments")
		return
	}

	ctx.JSON(http.StatusOK, commentListResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

func (h *CommentsHandler) canSeePost(ctx *gin.Context, p post.Post) bool {
	if role, _ := middlewares.RoleFromContext(ctx); role == auth.RoleAdmin {
		return true
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	return userID != "" && userID == p.AuthorID
}

func (h *CommentsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("commentId")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "commentId must be a UUID", nil)
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not delete comment")
		return
	}

	if role != auth.RoleAdmin && existing.AuthorID != userID {
		RespondForbidden(ctx, "Only the author or an admin can delete this comment")
		return
	}

	if err := h.store.SoftDelete(cctx, id); err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not delete comment")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *CommentsHandler) enqueueNotification(ctx context.Context, gctx *gin.Context, c comment.Comment, parent post.Post) {
	if h.enqueuer == nil {
		return
	}

	requestID := ""

	if v, ok := gctx.Get(middlewares.CtxRequestID); ok {
		requestID, _ = v.(string)
	}

	payload, err := jobs.CommentNotificationPayload{
		CommentID:   c.ID,
		PostID:      parent.ID,
		AuthorID:    parent.AuthorID,
		RequestedAt: time.Now().UTC(),
		RequestID:   requestID,
	}.JSON()

	if err != nil {
		slog.Warn("comment notification payload encode failed", "err", err, "comment_id", c.ID)
		return
	}

	key := "comment-notify:" + c.ID

	// best effort, same as the welcome email
	_, err = h.enqueuer.Create(ctx, job.CreateRequest{
		Type:           jobs.TypeCommentNotification,
		Payload:        payload,
		IdempotencyKey: &key,
	})

	if err != nil {
		slog.Warn("comment notification enqueue failed", "err", err, "comment_id", c.ID)
	}
}
