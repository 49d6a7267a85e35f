package middlewares

import (
	"net/http"
	"prepdesk/src/types"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware gates a route group to users carrying the given role.
// Runs after AuthMiddleware has resolved the user row.
func RoleMiddleware(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		current := ctx.GetString("role")
		if current != role && current != types.ROLE_ADMIN {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not enough permissions to perform this action"})
			return
		}
	}
}
