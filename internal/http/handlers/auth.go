package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/gin-gonic/gin"
)

// CredentialStore is the slice of the user store the authenticator needs.
type CredentialStore interface {
	GetByUsernameOrEmail(ctx context.Context, identifier string) (user.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
}

type AuthHandler struct {
	users CredentialStore
	jwt   *auth.Manager
}

func NewAuthHandler(users CredentialStore, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
	}
}

type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the store lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsernameOrEmail(cctx, req.UsernameOrEmail)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// same failure as a wrong password: never reveal which was wrong
			RespondUnAuthorized(ctx, "invalid_credentials", "Username/email or password is incorrect.")
			return
		}

		if postgres.IsTimeout(err) {
			RespondUnavailable(ctx, "Could not log in, retry shortly")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Username/email or password is incorrect.")
		return
	}

	// token subject is the username, not the email: emails can change
	accessToken, err := h.jwt.Issue(foundUser.Username)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"tokenType":   "Bearer",
	})
}

// Register creates a credential with the default role. It never logs the
// new user in; authentication stays a separate step.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// both uniqueness checks run before any write; the store's unique
	// constraints close the race window behind them
	taken, err := h.users.ExistsByUsername(cctx, req.Username)

	if err != nil {
		h.respondRegisterStoreError(ctx, err)
		return
	}

	if taken {
		RespondConflict(ctx, "username_taken", "Username already exists.")
		return
	}

	taken, err = h.users.ExistsByEmail(cctx, req.Email)

	if err != nil {
		h.respondRegisterStoreError(ctx, err)
		return
	}

	if taken {
		RespondConflict(ctx, "email_taken", "Email already exists.")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not register user")
		return
	}

	_, err = h.users.Create(cctx, req.Username, req.Email, hash)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			RespondConflict(ctx, "username_taken", "Username already exists.")
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email already exists.")
		default:
			h.respondRegisterStoreError(ctx, err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) respondRegisterStoreError(ctx *gin.Context, err error) {
	if postgres.IsTimeout(err) {
		RespondUnavailable(ctx, "Could not register user, retry shortly")
		return
	}

	RespondInternal(ctx, "Could not register user")
}
