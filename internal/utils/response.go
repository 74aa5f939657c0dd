package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Fail maps an application error to its HTTP status and envelope. Unknown
// errors are logged server-side and surfaced as a generic 500.
func Fail(ctx *gin.Context, err error) {
	var appErr *apperrors.Error

	if !errors.As(err, &appErr) {
		log.Printf("Unhandled error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		ctx.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "Internal server error"})
		return
	}

	status := statusFor(appErr.Kind)

	if status == http.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, appErr)
		ctx.JSON(status, Envelope{Success: false, Message: "Internal server error"})
		return
	}

	ctx.JSON(status, Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

// AbortFail is Fail for middleware, which must also stop the chain.
func AbortFail(ctx *gin.Context, err error) {
	Fail(ctx, err)
	ctx.Abort()
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
