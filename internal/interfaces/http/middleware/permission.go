package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stocktrack/backend/internal/interfaces/http/dto"
)

// RequireRole creates middleware that requires the caller to carry any of
// the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortForbidden(c, "No authentication claims found")
			return
		}
		if !claims.HasRole(roles...) {
			abortForbidden(c, "Caller lacks the required role")
			return
		}
		c.Next()
	}
}

// RequirePermission creates middleware that requires any of the specified
// permissions. The caller must hold at least one to proceed.
func RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortForbidden(c, "No authentication claims found")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			abortForbidden(c, "Caller lacks the required permission")
			return
		}
		c.Next()
	}
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(dto.ErrCodeForbidden, message))
}
