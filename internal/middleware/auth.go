// Package middleware holds the gin middleware chain: authentication,
// role gating, request logging and CORS.
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/summit-delegates/backend/internal/auth"
	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/pkg/response"
)

// Authenticate resolves the bearer token to an existing user and stores it
// in the request context. Failures are always 401.
func Authenticate(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		user, err := svc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(auth.ContextUser, user)
		c.Set(auth.ContextToken, parts[1])
		c.Next()
	}
}

// RequireRole allows only the given roles past. Must run after
// Authenticate. An authenticated caller outside the allow-list gets 403,
// never 401.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.UserFromContext(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if err := auth.Authorize(user, roles...); err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				response.Forbidden(c, "insufficient permissions")
			} else {
				response.Internal(c, "authorization failed")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
