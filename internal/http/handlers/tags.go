package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/domain/tag"
	"github.com/inkwell/bloghub/internal/utils"
)

type TagStore interface {
	Create(ctx context.Context, name, slug string) (tag.Tag, error)
	List(ctx context.Context) ([]tag.Tag, error)
	Delete(ctx context.Context, id string) error
}

type TagsHandler struct {
	store TagStore
}

func NewTagsHandler(store TagStore) *TagsHandler {
	return &TagsHandler{store: store}
}

func (h *TagsHandler) Create(ctx *gin.Context) {
	var req tag.CreateTagRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	slug := utils.Slugify(req.Name)

	created, err := h.store.Create(cctx, req.Name, slug)

	if err != nil {
		if errors.Is(err, tag.ErrSlugTaken) {
			RespondConflict(ctx, "A tag with this name already exists.")
			return
		}
		RespondInternal(ctx, "Could not create tag")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"tag": created})
}

func (h *TagsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.store.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list tags")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *TagsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("tagId")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "tagId must be a UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, tag.ErrNotFound) {
			RespondNotFound(ctx, "Tag not found")
			return
		}
		RespondInternal(ctx, "Could not delete tag")
		return
	}

	ctx.Status(http.StatusNoContent)
}
