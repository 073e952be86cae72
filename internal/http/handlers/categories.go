package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/domain/category"
	"github.com/inkwell/bloghub/internal/utils"
)

type CategoryStore interface {
	Create(ctx context.Context, name, slug, description string) (category.Category, error)
	List(ctx context.Context) ([]category.Category, error)
	GetBySlug(ctx context.Context, slug string) (category.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoriesHandler struct {
	store CategoryStore
}

func NewCategoriesHandler(store CategoryStore) *CategoriesHandler {
	return &CategoriesHandler{store: store}
}

func (h *CategoriesHandler) Create(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	slug := utils.Slugify(req.Name)

	created, err := h.store.Create(cctx, req.Name, slug, req.Description)

	if err != nil {
		if errors.Is(err, category.ErrSlugTaken) {
			RespondConflict(ctx, "A category with this name already exists.")
			return
		}
		RespondInternal(ctx, "Could not create category")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"category": created})
}

func (h *CategoriesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.store.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CategoriesHandler) Get(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.store.GetBySlug(cctx, slug)

	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not load category")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"category": c})
}

func (h *CategoriesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("categoryId")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "categoryId must be a UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not delete category")
		return
	}

	ctx.Status(http.StatusNoContent)
}
