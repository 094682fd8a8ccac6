package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/bloghub/internal/apperrors"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Fake implementation of handlers.CommentStore

type fakeCommentsRepo struct {
	createFn func(ctx context.Context, postID int64, req comment.CreateCommentRequest) (comment.Comment, error)
	listFn   func(ctx context.Context, postID int64) ([]comment.Comment, error)
	getFn    func(ctx context.Context, postID, commentID int64) (comment.Comment, error)
	updateFn func(ctx context.Context, postID, commentID int64, req comment.UpdateCommentRequest) (comment.Comment, error)
	deleteFn func(ctx context.Context, postID, commentID int64) error
}

func (f *fakeCommentsRepo) Create(ctx context.Context, postID int64, req comment.CreateCommentRequest) (comment.Comment, error) {
	if f.createFn != nil {
		return f.createFn(ctx, postID, req)
	}

	return comment.Comment{}, nil
}

func (f *fakeCommentsRepo) ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	if f.listFn != nil {
		return f.listFn(ctx, postID)
	}

	return []comment.Comment{}, nil
}

func (f *fakeCommentsRepo) GetOwned(ctx context.Context, postID, commentID int64) (comment.Comment, error) {
	if f.getFn != nil {
		return f.getFn(ctx, postID, commentID)
	}

	return comment.Comment{}, nil
}

func (f *fakeCommentsRepo) Update(ctx context.Context, postID, commentID int64, req comment.UpdateCommentRequest) (comment.Comment, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, postID, commentID, req)
	}

	return comment.Comment{}, nil
}

func (f *fakeCommentsRepo) Delete(ctx context.Context, postID, commentID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, postID, commentID)
	}

	return nil
}

func newCommentsRouter(repo *fakeCommentsRepo) *gin.Engine {
	h := handlers.NewCommentsHandler(repo)

	r := gin.New()
	r.POST("/posts/:postId/comments", h.Create)
	r.GET("/posts/:postId/comments", h.ListByPost)
	r.GET("/posts/:postId/comments/:commentId", h.GetByID)
	r.PUT("/posts/:postId/comments/:commentId", h.Update)
	r.DELETE("/posts/:postId/comments/:commentId", h.Delete)

	return r
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	return resp.Error.Code
}

func TestCreateCommentUnderMissingPost(t *testing.T) {
	repo := &fakeCommentsRepo{
		createFn: func(ctx context.Context, postID int64, req comment.CreateCommentRequest) (comment.Comment, error) {
			return comment.Comment{}, apperrors.NewNotFound("Post", "id", postID, post.ErrNotFound)
		},
	}

	r := newCommentsRouter(repo)

	w := postJSON(t, r, "/posts/42/comments", gin.H{
		"name":  "Jamie",
		"email": "jamie@example.com",
		"body":  "long enough comment body",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateCommentValidatesBody(t *testing.T) {
	r := newCommentsRouter(&fakeCommentsRepo{})

	w := postJSON(t, r, "/posts/1/comments", gin.H{
		"name":  "Jamie",
		"email": "not-an-email",
		"body":  "long enough comment body",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
}

// A comment that exists but hangs off a different post is a client error,
// not a 404: both entities exist, the claimed pairing is false.
func TestGetCommentMismatchedPost(t *testing.T) {
	repo := &fakeCommentsRepo{
		getFn: func(ctx context.Context, postID, commentID int64) (comment.Comment, error) {
			return comment.Comment{}, comment.ErrMismatchedPost
		},
	}

	r := newCommentsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/posts/1/comments/9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}

	if code := errCode(t, w); code != "comment_post_mismatch" {
		t.Fatalf("expected comment_post_mismatch, got %q", code)
	}
}

func TestGetCommentMissingComment(t *testing.T) {
	repo := &fakeCommentsRepo{
		getFn: func(ctx context.Context, postID, commentID int64) (comment.Comment, error) {
			return comment.Comment{}, apperrors.NewNotFound("Comment", "id", commentID, comment.ErrNotFound)
		},
	}

	r := newCommentsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/posts/1/comments/9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Error.Message != "Comment not found with id : 9" {
		t.Fatalf("unexpected message %q", resp.Error.Message)
	}
}

func TestUpdateCommentMismatchBlocksWrite(t *testing.T) {
	updated := false

	repo := &fakeCommentsRepo{
		updateFn: func(ctx context.Context, postID, commentID int64, req comment.UpdateCommentRequest) (comment.Comment, error) {
			updated = true

			return comment.Comment{}, comment.ErrMismatchedPost
		},
	}

	r := newCommentsRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/posts/2/comments/9", jsonBody(t, gin.H{
		"name":  "Jamie",
		"email": "jamie@example.com",
		"body":  "long enough comment body",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// the store surfaced the mismatch; the handler must not mask it
	if !updated {
		t.Fatal("expected update to be attempted against the store")
	}
}

func TestCommentIDsValidated(t *testing.T) {
	r := newCommentsRouter(&fakeCommentsRepo{})

	for _, path := range []string{
		"/posts/abc/comments",
		"/posts/1/comments/xyz",
		"/posts/-4/comments/2",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("path %q: expected 400, got %d", path, w.Code)
		}
	}
}
