package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/apperrors"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      ctx.Request.URL.Path,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnavailable(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusServiceUnavailable, "store_unavailable", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondDomainError maps the error taxonomy shared by the repos onto the
// wire. Anything it does not recognize is an internal failure reported with
// the non-leaking fallback message.
func RespondDomainError(ctx *gin.Context, err error, fallback string) {
	var nf *apperrors.NotFoundError

	switch {
	case errors.As(err, &nf):
		RespondNotFound(ctx, nf.Error())
	case errors.Is(err, comment.ErrMismatchedPost):
		// both entities exist; the claimed relationship is false
		RespondBadRequest(ctx, "comment_post_mismatch", "Comment doesn't belong to post", nil)
	case postgres.IsTimeout(err):
		RespondUnavailable(ctx, "Store timed out, retry shortly")
	default:
		RespondInternal(ctx, fallback)
	}
}
