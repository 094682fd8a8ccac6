package post

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("post not found")

type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	CategoryID  int64     `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"required,min=10,max=1000"`
	Content     string `json:"content" binding:"required"`
	CategoryID  int64  `json:"categoryId" binding:"required,min=1"`
}

// a full update payload; partial updates are not supported.
type UpdatePostRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"required,min=10,max=1000"`
	Content     string `json:"content" binding:"required"`
	CategoryID  int64  `json:"categoryId" binding:"required,min=1"`
}

type ListPostsFilter struct {
	CategoryID *int64
	Limit      int
	Offset     int
}
