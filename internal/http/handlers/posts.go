package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/cache"
	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/http/middlewares"
	"github.com/inkwell/bloghub/internal/utils"
)

type PostStore interface {
	Create(ctx context.Context, authorID, slug string, req post.CreatePostRequest) (post.Post, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	GetBySlug(ctx context.Context, slug string) (post.Post, error)
	ListCursor(ctx context.Context, filter post.ListPostsFilter, afterCreatedAt time.Time, afterID string) ([]post.Post, *string, bool, error)
	Update(ctx context.Context, id, slug string, req post.UpdatePostRequest) (post.Post, error)
	SoftDelete(ctx context.Context, id string) error
}

type PostsHandler struct {
	store     PostStore
	likes     LikeStore
	listCache *cache.PostListCache
}

func NewPostsHandler(store PostStore, likes LikeStore, listCache *cache.PostListCache) *PostsHandler {
	return &PostsHandler{
		store:     store,
		likes:     likes,
		listCache: listCache,
	}
}

// slugAttempts bounds the collision-retry loop on create/update.
const slugAttempts = 3

func (h *PostsHandler) Create(ctx *gin.Context) {
	authorID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || authorID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Status == "" {
		req.Status = post.StatusDraft
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	slug := utils.Slugify(req.Title)

	var created post.Post
	var err error

	for attempt := 0; attempt < slugAttempts; attempt++ {
		created, err = h.store.Create(cctx, authorID, slug, req)

		if !errors.Is(err, post.ErrSlugTaken) {
			break
		}

		slug = utils.SlugWithSuffix(utils.Slugify(req.Title))
	}

	if err != nil {
		if errors.Is(err, post.ErrSlugTaken) {
			RespondConflict(ctx, "Could not find a free slug for this title.")
			return
		}
		RespondInternal(ctx, "Could not create post")
		return
	}

	h.listCache.InvalidateAll(cctx)

	ctx.JSON(http.StatusCreated, gin.H{"post": created})
}

// Get resolves the path segment as a UUID first, then as a slug. Drafts are
// visible only to their author or an admin.
func (h *PostsHandler) Get(ctx *gin.Context) {
	ref := ctx.Param("postId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	var p post.Post
	var err error

	if utils.IsUUID(ref) {
		p, err = h.store.GetByID(cctx, ref)
	} else {
		p, err = h.store.GetBySlug(cctx, ref)
	}

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not load post")
		return
	}

	if p.Status != post.StatusPublished && !h.canManage(ctx, p) {
		// hide drafts from everyone else
		RespondNotFound(ctx, "Post not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"post": p})
}

type postListResponse struct {
	Items      []post.Post `json:"items"`
	NextCursor *string     `json:"nextCursor,omitempty"`
	HasMore    bool        `json:"hasMore"`
}

func (h *PostsHandler) List(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"), 20, 100)

	rawCursor := ctx.Query("cursor")

	afterCreatedAt := time.Now().UTC().Add(time.Hour) // open upper bound
	afterID := "ffffffff-ffff-ffff-ffff-ffffffffffff"

	if rawCursor != "" {
		cur, err := utils.DecodePostCursor(rawCursor)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	filter := post.ListPostsFilter{Limit: limit}

	if v := ctx.Query("category"); v != "" {
		if !utils.IsUUID(v) {
			RespondBadRequest(ctx, "category must be a UUID", nil)
			return
		}
		filter.CategoryID = &v
	}

	if v := ctx.Query("tag"); v != "" {
		filter.TagSlug = &v
	}

	if v := ctx.Query("author"); v != "" {
		if !utils.IsUUID(v) {
			RespondBadRequest(ctx, "author must be a UUID", nil)
			return
		}
		filter.AuthorID = &v
	}

	status := post.StatusPublished

	if v := ctx.Query("status"); v != "" && v != post.StatusPublished {
		if !h.canSeeDrafts(ctx, filter.AuthorID) {
			RespondForbidden(ctx, "Draft listing is limited to your own posts")
			return
		}
		status = v
	}
	filter.Status = &status

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// only anonymous-shaped published pages are worth caching
	cacheable := status == post.StatusPublished && filter.AuthorID == nil

	var key string

	if cacheable {
		key = cache.BuildPostListKey(limit, rawCursor, filter.CategoryID, filter.TagSlug)

		var cached postListResponse

		if h.listCache.Get(cctx, key, &cached) {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	items, nextCursor, hasMore, err := h.store.ListCursor(cctx, filter, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list posts")
		return
	}

	resp := postListResponse{Items: items, NextCursor: nextCursor, HasMore: hasMore}

	if cacheable {
		h.listCache.Set(cctx, key, resp)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *PostsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("postId")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "postId must be a UUID", nil)
		return
	}

	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Status == "" {
		req.Status = post.StatusDraft
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not update post")
		return
	}

	if !h.canManage(ctx, existing) {
		RespondForbidden(ctx, "Only the author or an admin can modify this post")
		return
	}

	slug := existing.Slug

	if req.Title != existing.Title {
		slug = utils.Slugify(req.Title)
	}

	var updated post.Post

	for attempt := 0; attempt < slugAttempts; attempt++ {
		updated, err = h.store.Update(cctx, id, slug, req)

		if !errors.Is(err, post.ErrSlugTaken) {
			break
		}

		slug = utils.SlugWithSuffix(utils.Slugify(req.Title))
	}

	if err != nil {
		if errors.Is(err, post.ErrSlugTaken) {
			RespondConflict(ctx, "Could not find a free slug for this title.")
			return
		}
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not update post")
		return
	}

	h.listCache.InvalidateAll(cctx)

	ctx.JSON(http.StatusOK, gin.H{"post": updated})
}

func (h *PostsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("postId")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "postId must be a UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not delete post")
		return
	}

	if !h.canManage(ctx, existing) {
		RespondForbidden(ctx, "Only the author or an admin can delete this post")
		return
	}

	if err := h.store.SoftDelete(cctx, id); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not delete post")
		return
	}

	h.listCache.InvalidateAll(cctx)

	ctx.Status(http.StatusNoContent)
}

// canManage is the author-or-admin rule shared by update/delete.
func (h *PostsHandler) canManage(ctx *gin.Context, p post.Post) bool {
	userID, _ := middlewares.UserIDFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	if role == auth.RoleAdmin {
		return true
	}

	return userID != "" && userID == p.AuthorID
}

func (h *PostsHandler) canSeeDrafts(ctx *gin.Context, authorFilter *string) bool {
	userID, _ := middlewares.UserIDFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	if role == auth.RoleAdmin {
		return true
	}

	return userID != "" && authorFilter != nil && *authorFilter == userID
}

func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n <= 0 {
		return def
	}

	if n > max {
		return max
	}

	return n
}
