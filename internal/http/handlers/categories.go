package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/domain/category"
	"github.com/geocoder89/bloghub/internal/utils"
	"github.com/gin-gonic/gin"
)

const categoryListKey = "categories:list"

type CategoryStore interface {
	Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error)
	GetByID(ctx context.Context, id int64) (category.Category, error)
	List(ctx context.Context) ([]category.Category, error)
	Update(ctx context.Context, id int64, req category.UpdateCategoryRequest) (category.Category, error)
	Delete(ctx context.Context, id int64) error
}

type CategoriesHandler struct {
	categories CategoryStore

	// in-process TTL cache for the full listing; categories change rarely
	list *cache.Cache
}

func NewCategoriesHandler(categories CategoryStore) *CategoriesHandler {
	return &CategoriesHandler{
		categories: categories,
		list:       cache.New(30 * time.Second),
	}
}

func (h *CategoriesHandler) Create(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.categories.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondDomainError(ctx, err, "Could not create category")
		return
	}

	h.list.Clear()

	ctx.JSON(http.StatusCreated, created)
}

func (h *CategoriesHandler) GetByID(ctx *gin.Context) {
	id, err := utils.ParseID(ctx.Param("id"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Category id must be a positive integer", nil)
		return
	}

	found, err := h.categories.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch category")
		return
	}

	ctx.JSON(http.StatusOK, found)
}

func (h *CategoriesHandler) List(ctx *gin.Context) {
	if v, ok := h.list.Get(categoryListKey); ok {
		if items, ok := v.([]category.Category); ok {
			ctx.JSON(http.StatusOK, items)
			return
		}
	}

	items, err := h.categories.List(ctx.Request.Context())

	if err != nil {
		RespondDomainError(ctx, err, "Could not list categories")
		return
	}

	if items == nil {
		items = []category.Category{}
	}

	h.list.Set(categoryListKey, items)

	ctx.JSON(http.StatusOK, items)
}

func (h *CategoriesHandler) Update(ctx *gin.Context) {
	id, err := utils.ParseID(ctx.Param("id"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Category id must be a positive integer", nil)
		return
	}

	var req category.UpdateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.categories.Update(ctx.Request.Context(), id, req)

	if err != nil {
		RespondDomainError(ctx, err, "Could not update category")
		return
	}

	h.list.Clear()

	ctx.JSON(http.StatusOK, updated)
}

func (h *CategoriesHandler) Delete(ctx *gin.Context) {
	id, err := utils.ParseID(ctx.Param("id"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Category id must be a positive integer", nil)
		return
	}

	if err := h.categories.Delete(ctx.Request.Context(), id); err != nil {
		RespondDomainError(ctx, err, "Could not delete category")
		return
	}

	h.list.Clear()

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
