package comment

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("comment not found")

	// The comment and the post both exist, but the comment's stored parent
	// is a different post than the one addressed by the request. This is a
	// client error, not a not-found.
	ErrMismatchedPost = errors.New("comment does not belong to post")
)

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BelongsTo reports whether the comment's stored parent is postID.
// Both sides are int64, so the comparison cannot alias through overflow.
func (c Comment) BelongsTo(postID int64) bool {
	return c.PostID == postID
}

type CreateCommentRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Email string `json:"email" binding:"required,email"`
	Body  string `json:"body" binding:"required,min=10,max=2000"`
}

type UpdateCommentRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Email string `json:"email" binding:"required,email"`
	Body  string `json:"body" binding:"required,min=10,max=2000"`
}
