package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/bloghub/internal/apperrors"
	"github.com/geocoder89/bloghub/internal/domain/category"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Fake implementation of handlers.PostStore

type fakePostsRepo struct {
	createFn  func(ctx context.Context, req post.CreatePostRequest) (post.Post, error)
	getFn     func(ctx context.Context, id int64) (post.Post, error)
	listFn    func(ctx context.Context, filter post.ListPostsFilter) ([]post.Post, int, error)
	listCatFn func(ctx context.Context, categoryID int64) ([]post.Post, error)
	updateFn  func(ctx context.Context, id int64, req post.UpdatePostRequest) (post.Post, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (f *fakePostsRepo) Create(ctx context.Context, req post.CreatePostRequest) (post.Post, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return post.Post{}, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return post.Post{}, nil
}

func (f *fakePostsRepo) List(ctx context.Context, filter post.ListPostsFilter) ([]post.Post, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return []post.Post{}, 0, nil
}

func (f *fakePostsRepo) ListByCategory(ctx context.Context, categoryID int64) ([]post.Post, error) {
	if f.listCatFn != nil {
		return f.listCatFn(ctx, categoryID)
	}

	return []post.Post{}, nil
}

func (f *fakePostsRepo) Update(ctx context.Context, id int64, req post.UpdatePostRequest) (post.Post, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return post.Post{}, nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func newPostsRouter(repo *fakePostsRepo) *gin.Engine {
	h := handlers.NewPostsHandler(repo, nil)

	r := gin.New()
	r.POST("/posts", h.Create)
	r.GET("/posts", h.List)
	r.GET("/posts/:postId", h.GetByID)
	r.PUT("/posts/:postId", h.Update)
	r.DELETE("/posts/:postId", h.Delete)
	r.GET("/categories/:id/posts", h.ListByCategory)

	return r
}

func TestCreatePostRequiresExistingCategory(t *testing.T) {
	repo := &fakePostsRepo{
		createFn: func(ctx context.Context, req post.CreatePostRequest) (post.Post, error) {
			return post.Post{}, apperrors.NewNotFound("Category", "id", req.CategoryID, category.ErrNotFound)
		},
	}

	r := newPostsRouter(repo)

	w := postJSON(t, r, "/posts", gin.H{
		"title":       "My first post",
		"description": "A perfectly valid description",
		"content":     "body text",
		"categoryId":  99,
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}

	want := "Category not found with id : 99"

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Error.Message != want {
		t.Fatalf("expected message %q, got %q", want, resp.Error.Message)
	}
}

func TestCreatePostValidatesBody(t *testing.T) {
	r := newPostsRouter(&fakePostsRepo{})

	tests := []struct {
		name string
		body gin.H
	}{
		{"short title", gin.H{"title": "a", "description": "long enough desc", "content": "x", "categoryId": 1}},
		{"short description", gin.H{"title": "fine title", "description": "short", "content": "x", "categoryId": 1}},
		{"missing category", gin.H{"title": "fine title", "description": "long enough desc", "content": "x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/posts", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetPostRejectsBadIDs(t *testing.T) {
	r := newPostsRouter(&fakePostsRepo{})

	for _, raw := range []string{"abc", "-1", "+5", "12x", "9223372036854775808"} {
		req := httptest.NewRequest(http.MethodGet, "/posts/"+raw, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", raw, w.Code)
		}
	}
}

func TestGetPostFetchesByPathID(t *testing.T) {
	repo := &fakePostsRepo{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{ID: id, Title: "found"}, nil
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/posts/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var got post.Post

	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	// the path id must reach the store untouched
	if got.ID != 42 {
		t.Fatalf("expected post 42, got %d", got.ID)
	}
}

func TestGetPostNotFound(t *testing.T) {
	repo := &fakePostsRepo{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{}, apperrors.NewNotFound("Post", "id", id, post.ErrNotFound)
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/posts/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListPostsPaginates(t *testing.T) {
	var gotFilter post.ListPostsFilter

	repo := &fakePostsRepo{
		listFn: func(ctx context.Context, filter post.ListPostsFilter) ([]post.Post, int, error) {
			gotFilter = filter

			return []post.Post{{ID: 11, Title: "one"}}, 21, nil
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/posts?pageNo=3&pageSize=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	if gotFilter.Limit != 5 || gotFilter.Offset != 10 {
		t.Fatalf("expected limit 5 offset 10, got %+v", gotFilter)
	}

	var page handlers.PostPage

	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}

	if page.TotalElements != 21 || page.TotalPages != 5 || page.PageNo != 3 || page.Last {
		t.Fatalf("unexpected page envelope: %+v", page)
	}
}

func TestListPostsFiltersByCategory(t *testing.T) {
	var gotFilter post.ListPostsFilter

	repo := &fakePostsRepo{
		listFn: func(ctx context.Context, filter post.ListPostsFilter) ([]post.Post, int, error) {
			gotFilter = filter

			return nil, 0, nil
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/posts?categoryId=7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if gotFilter.CategoryID == nil || *gotFilter.CategoryID != 7 {
		t.Fatalf("expected category filter 7, got %+v", gotFilter.CategoryID)
	}

	// nil slice from the store must surface as an empty array
	var page handlers.PostPage

	_ = json.Unmarshal(w.Body.Bytes(), &page)

	if page.Content == nil {
		t.Fatal("expected empty content array, got null")
	}
}

func TestListPostsByCategoryChecksCategory(t *testing.T) {
	repo := &fakePostsRepo{
		listCatFn: func(ctx context.Context, categoryID int64) ([]post.Post, error) {
			return nil, apperrors.NewNotFound("Category", "id", categoryID, category.ErrNotFound)
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/categories/3/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdatePostTargetsPathID(t *testing.T) {
	var gotID int64

	repo := &fakePostsRepo{
		updateFn: func(ctx context.Context, id int64, req post.UpdatePostRequest) (post.Post, error) {
			gotID = id

			return post.Post{ID: id, Title: req.Title}, nil
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/posts/6", jsonBody(t, gin.H{
		"title":       "Updated title",
		"description": "A perfectly valid description",
		"content":     "body text",
		"categoryId":  1,
	}))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	if gotID != 6 {
		t.Fatalf("expected update for id 6, got %d", gotID)
	}
}

func TestDeletePost(t *testing.T) {
	var deleted int64

	repo := &fakePostsRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id

			return nil
		},
	}

	r := newPostsRouter(repo)

	req := httptest.NewRequest(http.MethodDelete, "/posts/8", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if deleted != 8 {
		t.Fatalf("expected delete for id 8, got %d", deleted)
	}
}
