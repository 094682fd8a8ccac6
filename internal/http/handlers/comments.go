package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/utils"
	"github.com/gin-gonic/gin"
)

type CommentStore interface {
	Create(ctx context.Context, postID int64, req comment.CreateCommentRequest) (comment.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error)
	GetOwned(ctx context.Context, postID, commentID int64) (comment.Comment, error)
	Update(ctx context.Context, postID, commentID int64, req comment.UpdateCommentRequest) (comment.Comment, error)
	Delete(ctx context.Context, postID, commentID int64) error
}

// CommentsHandler serves comments nested under their parent post. Every
// operation re-checks that the addressed comment actually hangs off the
// addressed post.
type CommentsHandler struct {
	comments CommentStore
}

func NewCommentsHandler(comments CommentStore) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

func (h *CommentsHandler) Create(ctx *gin.Context) {
	postID, ok := h.postID(ctx)

	if !ok {
		return
	}

	var req comment.CreateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.comments.Create(ctx.Request.Context(), postID, req)

	if err != nil {
		RespondDomainError(ctx, err, "Could not create comment")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *CommentsHandler) ListByPost(ctx *gin.Context) {
	postID, ok := h.postID(ctx)

	if !ok {
		return
	}

	items, err := h.comments.ListByPost(ctx.Request.Context(), postID)

	if err != nil {
		RespondDomainError(ctx, err, "Could not list comments")
		return
	}

	if items == nil {
		items = []comment.Comment{}
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *CommentsHandler) GetByID(ctx *gin.Context) {
	postID, commentID, ok := h.ids(ctx)

	if !ok {
		return
	}

	found, err := h.comments.GetOwned(ctx.Request.Context(), postID, commentID)

	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch comment")
		return
	}

	ctx.JSON(http.StatusOK, found)
}

func (h *CommentsHandler) Update(ctx *gin.Context) {
	postID, commentID, ok := h.ids(ctx)

	if !ok {
		return
	}

	var req comment.UpdateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.comments.Update(ctx.Request.Context(), postID, commentID, req)

	if err != nil {
		RespondDomainError(ctx, err, "Could not update comment")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *CommentsHandler) Delete(ctx *gin.Context) {
	postID, commentID, ok := h.ids(ctx)

	if !ok {
		return
	}

	if err := h.comments.Delete(ctx.Request.Context(), postID, commentID); err != nil {
		RespondDomainError(ctx, err, "Could not delete comment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}

func (h *CommentsHandler) postID(ctx *gin.Context) (int64, bool) {
	postID, err := utils.ParseID(ctx.Param("postId"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Post id must be a positive integer", nil)
		return 0, false
	}

	return postID, true
}

func (h *CommentsHandler) ids(ctx *gin.Context) (int64, int64, bool) {
	postID, ok := h.postID(ctx)

	if !ok {
		return 0, 0, false
	}

	commentID, err := utils.ParseID(ctx.Param("commentId"))

	if err != nil {
		RespondBadRequest(ctx, "invalid_id", "Comment id must be a positive integer", nil)
		return 0, 0, false
	}

	return postID, commentID, true
}
