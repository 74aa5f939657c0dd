package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
)

// RequireRoles is the single role-authorization gate. It runs after
// RequireAuth and denies the request unless the caller's role appears in
// the route's allow-list. Roles are exact: no inheritance.
func RequireRoles(allowed ...types.Role) gin.HandlerFunc {
	allowedSet := make(map[types.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			utils.AbortFail(ctx, apperrors.Unauthorized("User not authenticated"))
			return
		}

		user, ok := value.(types.AuthenticatedUser)

		if !ok {
			utils.AbortFail(ctx, apperrors.Unauthorized("User not authenticated"))
			return
		}

		if _, ok := allowedSet[user.Role]; !ok {
			utils.AbortFail(ctx, apperrors.Forbidden("You do not have permission to perform this action"))
			return
		}

		ctx.Next()
	}
}
