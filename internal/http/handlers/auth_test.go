package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/repo/memory"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/gin-gonic/gin"
)

// Keep Gin quiet during tests

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthRouter(t *testing.T, users *memory.UsersRepo) *gin.Engine {
	t.Helper()

	manager, err := auth.NewManager(testSecret, 15*time.Minute)

	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	h := handlers.NewAuthHandler(users, manager)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)

	return r
}

func seedUser(t *testing.T, users *memory.UsersRepo, username, email, password string) {
	t.Helper()

	hash, err := security.HashPassword(password)

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if _, err := users.Create(context.Background(), username, email, hash); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func jsonBody(t *testing.T, body any) *bytes.Reader {
	t.Helper()

	raw, err := json.Marshal(body)

	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	return bytes.NewReader(raw)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestLoginSucceedsWithUsername(t *testing.T) {
	users := memory.NewUsersRepo()
	seedUser(t, users, "marta", "marta@example.com", "sup3rsecret")

	r := newAuthRouter(t, users)

	w := postJSON(t, r, "/auth/login", gin.H{
		"usernameOrEmail": "marta",
		"password":        "sup3rsecret",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.AccessToken == "" {
		t.Fatal("expected access token in response")
	}

	if resp.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", resp.TokenType)
	}

	// the token's subject must be the username
	manager, _ := auth.NewManager(testSecret, 15*time.Minute)
	subject, err := manager.Verify(resp.AccessToken)

	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if subject != "marta" {
		t.Fatalf("expected subject marta, got %q", subject)
	}
}

func TestLoginSucceedsWithEmail(t *testing.T) {
	users := memory.NewUsersRepo()
	seedUser(t, users, "marta", "marta@example.com", "sup3rsecret")

	r := newAuthRouter(t, users)

	w := postJSON(t, r, "/auth/login", gin.H{
		"usernameOrEmail": "marta@example.com",
		"password":        "sup3rsecret",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	// the subject stays the canonical username even for email logins
	var resp struct {
		AccessToken string `json:"accessToken"`
	}

	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	manager, _ := auth.NewManager(testSecret, 15*time.Minute)
	subject, _ := manager.Verify(resp.AccessToken)

	if subject != "marta" {
		t.Fatalf("expected subject marta, got %q", subject)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	users := memory.NewUsersRepo()
	seedUser(t, users, "marta", "marta@example.com", "sup3rsecret")

	r := newAuthRouter(t, users)

	wrongPassword := postJSON(t, r, "/auth/login", gin.H{
		"usernameOrEmail": "marta",
		"password":        "not-the-password",
	})

	unknownUser := postJSON(t, r, "/auth/login", gin.H{
		"usernameOrEmail": "nobody",
		"password":        "whatever123",
	})

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", wrongPassword.Code)
	}

	if unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", unknownUser.Code)
	}

	// same code and message so a caller cannot probe which identifiers exist
	type errBody struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	var a, b errBody

	_ = json.Unmarshal(wrongPassword.Body.Bytes(), &a)
	_ = json.Unmarshal(unknownUser.Body.Bytes(), &b)

	if a.Error.Code != b.Error.Code || a.Error.Message != b.Error.Message {
		t.Fatalf("expected identical error payloads, got %+v vs %+v", a, b)
	}

	if a.Error.Code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %q", a.Error.Code)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	r := newAuthRouter(t, memory.NewUsersRepo())

	w := postJSON(t, r, "/auth/login", gin.H{"usernameOrEmail": "marta"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegisterCreatesUserWithoutLoggingIn(t *testing.T) {
	users := memory.NewUsersRepo()
	r := newAuthRouter(t, users)

	w := postJSON(t, r, "/auth/register", gin.H{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "longenough",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}

	if bytes.Contains(w.Body.Bytes(), []byte("accessToken")) {
		t.Fatal("register must not return a token")
	}

	roles, err := users.RolesByUsername(context.Background(), "newuser")

	if err != nil {
		t.Fatalf("RolesByUsername: %v", err)
	}

	if len(roles) != 1 || roles[0] != "ROLE_USER" {
		t.Fatalf("expected default role only, got %v", roles)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	users := memory.NewUsersRepo()
	seedUser(t, users, "marta", "marta@example.com", "sup3rsecret")

	r := newAuthRouter(t, users)

	tests := []struct {
		name     string
		body     gin.H
		wantCode string
	}{
		{
			name: "username taken",
			body: gin.H{
				"username": "marta",
				"email":    "other@example.com",
				"password": "longenough",
			},
			wantCode: "username_taken",
		},
		{
			name: "email taken",
			body: gin.H{
				"username": "other",
				"email":    "marta@example.com",
				"password": "longenough",
			},
			wantCode: "email_taken",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/auth/register", tc.body)

			if w.Code != http.StatusConflict {
				t.Fatalf("expected 409, got %d body=%s", w.Code, w.Body.String())
			}

			if !bytes.Contains(w.Body.Bytes(), []byte(tc.wantCode)) {
				t.Fatalf("expected code %q in body %s", tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	r := newAuthRouter(t, memory.NewUsersRepo())

	tests := []struct {
		name string
		body gin.H
	}{
		{"short username", gin.H{"username": "ab", "email": "a@b.com", "password": "longenough"}},
		{"bad email", gin.H{"username": "someone", "email": "not-an-email", "password": "longenough"}},
		{"short password", gin.H{"username": "someone", "email": "a@b.com", "password": "short"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/auth/register", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}
