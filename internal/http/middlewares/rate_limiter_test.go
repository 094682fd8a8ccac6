package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limit int, window time.Duration) *gin.Engine {
	rl := middlewares.NewRateLimiter(limit, window)

	r := gin.New()
	r.POST("/login", rl.Middleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func hit(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = addr

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	r := newLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if w := hit(r, "10.0.0.1:5000"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := hit(r, "10.0.0.1:5000")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimiterKeysByClient(t *testing.T) {
	r := newLimitedRouter(1, time.Minute)

	if w := hit(r, "10.0.0.1:5000"); w.Code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", w.Code)
	}

	if w := hit(r, "10.0.0.1:5000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: expected 429, got %d", w.Code)
	}

	// a different client gets its own window
	if w := hit(r, "10.0.0.2:5000"); w.Code != http.StatusOK {
		t.Fatalf("second client: expected 200, got %d", w.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	r := newLimitedRouter(1, 30*time.Millisecond)

	if w := hit(r, "10.0.0.1:5000"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if w := hit(r, "10.0.0.1:5000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	time.Sleep(50 * time.Millisecond)

	if w := hit(r, "10.0.0.1:5000"); w.Code != http.StatusOK {
		t.Fatalf("after window: expected 200, got %d", w.Code)
	}
}
