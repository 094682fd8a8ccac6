package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PostStore interface {
	Create(ctx context.Context, req post.CreatePostRequest) (post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	List(ctx context.Context, filter post.ListPostsFilter) ([]post.Post, int, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]post.Post, error)
	Update(ctx context.Context, id int64, req post.UpdatePostRequest) (post.Post, error)
	Delete(ctx context.Context, id int64) error
}

type PostsHandler struct {
	posts PostStore
	cache *cache.Redis
}

// NewPostsHandler wires the post store and an optional redis read cache.
// A nil cache disables caching entirely.
func NewPostsHandler(posts PostStore, redisCache *cache.Redis) *PostsHandler {
	return &PostsHandler{
		posts: posts,
		cache: redisCache,
	}
}

// PostPage is the paginated list envelope.
type PostPage struct {
	Content       []post.Post `json:"content"`
	PageNo        int         `json:"pageNo"`
	PageSize      int         `json:"pageSize"`
	TotalElements int         `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Last          bool        `json:"last"`
}

func (h *PostsHandler) Create(ctx *gin.Context) {
	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.posts.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondDomainError(ctx, err, "Could not create post")
		return
	}

	h.invalidateLists(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, created)
}

func (h *PostsHandler) GetByID(ctx *gin.Context) {
	id, err := utils.ParseID(ctx.Param("postId"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Post id must be a positive integer", nil)
		return
	}

	key := postKey(id)

	var cached post.Post
	if h.cacheGet(ctx.Request.Context(), key, &cached) {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	found, err := h.posts.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch post")
		return
	}

	h.cacheSet(ctx.Request.Context(), key, found)

	ctx.JSON(http.StatusOK, found)
}

func (h *PostsHandler) List(ctx *gin.Context) {
	page := parsePositiveInt(ctx.Query("pageNo"), 1)
	size := parsePositiveInt(ctx.Query("pageSize"), defaultPageSize)

	if size > maxPageSize {
		size = maxPageSize
	}

	filter := post.ListPostsFilter{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	key := listKey(page, size, "all")

	if raw := ctx.Query("categoryId"); raw != "" {
		categoryID, err := utils.ParseID(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid_id", "Category id must be a positive integer", nil)
			return
		}

		filter.CategoryID = &categoryID
		key = listKey(page, size, raw)
	}

	var cached PostPage
	if h.cacheGet(ctx.Request.Context(), key, &cached) {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	items, total, err := h.posts.List(ctx.Request.Context(), filter)

	if err != nil {
		RespondDomainError(ctx, err, "Could not list posts")
		return
	}

	if items == nil {
		items = []post.Post{}
	}

	totalPages := (total + size - 1) / size

	result := PostPage{
		Content:       items,
		PageNo:        page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages,
	}

	h.cacheSet(ctx.Request.Context(), key, result)

	ctx.JSON(http.StatusOK, result)
}

// ListByCategory serves the unpaginated per-category listing.
func (h *PostsHandler) ListByCategory(ctx *gin.Context) {
	categoryID, err := utils.ParseID(ctx.Param("id"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Category id must be a positive integer", nil)
		return
	}

	items, err := h.posts.ListByCategory(ctx.Request.Context(), categoryID)

	if err != nil {
		RespondDomainError(ctx, err, "Could not list posts")
		return
	}

	if items == nil {
		items = []post.Post{}
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *PostsHandler) Update(ctx *gin.Context) {
	id, err := utils.ParseID(ctx.Param("postId"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Post id must be a positive integer", nil)
		return
	}

	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.posts.Update(ctx.Request.Context(), id, req)

	if err != nil {
		RespondDomainError(ctx, err, "Could not update post")
		return
	}

	h.invalidate(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, updated)
}

func (h *PostsHandler) Delete(ctx *gin.Context) {
	id, err := utils.ParseID(ctx.Param("postId"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Post id must be a positive integer", nil)
		return
	}

	if err := h.posts.Delete(ctx.Request.Context(), id); err != nil {
		RespondDomainError(ctx, err, "Could not delete post")
		return
	}

	h.invalidate(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Post deleted successfully",
	})
}

func (h *PostsHandler) cacheGet(ctx context.Context, key string, out any) bool {
	if h.cache == nil {
		return false
	}

	hit, err := h.cache.GetJSON(ctx, key, out)

	// redis trouble is never surfaced to the caller
	return err == nil && hit
}

func (h *PostsHandler) cacheSet(ctx context.Context, key string, val any) {
	if h.cache == nil {
		return
	}

	_ = h.cache.SetJSON(ctx, key, val)
}

func (h *PostsHandler) invalidate(ctx context.Context, id int64) {
	if h.cache == nil {
		return
	}

	_ = h.cache.Delete(ctx, postKey(id))
	h.invalidateLists(ctx)
}

func (h *PostsHandler) invalidateLists(ctx context.Context) {
	if h.cache == nil {
		return
	}

	_ = h.cache.DeleteByPattern(ctx, "posts:list:*")
}

func postKey(id int64) string {
	return fmt.Sprintf("posts:id:%d", id)
}

func listKey(page, size int, category string) string {
	return fmt.Sprintf("posts:list:%d:%d:%s", page, size, category)
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n < 1 {
		return fallback
	}

	return n
}
