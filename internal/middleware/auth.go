package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/auth"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

// RequireAuth verifies the bearer token, loads the user record and stashes
// it in the request context. Deactivated users are rejected even with a
// valid token.
func RequireAuth(tm *auth.TokenManager, conn *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			utils.AbortFail(ctx, apperrors.Unauthorized("Authorization token is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.AbortFail(ctx, apperrors.Unauthorized("Authorization header format must be Bearer {token}"))
			return
		}

		claims, err := tm.Verify(parts[1])

		if err != nil {
			utils.AbortFail(ctx, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		var user models.User

		if err := conn.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			utils.AbortFail(ctx, apperrors.Unauthorized("User not found"))
			return
		}

		if !user.Active {
			utils.AbortFail(ctx, apperrors.Unauthorized("Account is deactivated"))
			return
		}

		ctx.Set(types.ContextUserKey, types.AuthenticatedUser{
			ID:    user.ID,
			Name:  user.FullName(),
			Email: user.Email,
			Role:  types.Role(user.Role),
		})
		ctx.Next()
	}
}
