package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/utils"
)

// Recovery converts panics into the standard 500 envelope without leaking
// internals to the client.
func Recovery() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, r)
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, utils.Envelope{
					Success: false,
					Message: "Internal server error",
				})
			}
		}()
		ctx.Next()
	}
}
