package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by OptionalAuth.
const (
	ContextUser      = "user"
	ContextPrincipal = "principal"
)

// TokenResolver validates a bearer token and loads its user.
// service.AuthService satisfies it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// OptionalAuth resolves the caller from the Authorization header. Requests
// without the header continue as anonymous; a header that is present but
// malformed or carries a bad token is rejected with 401.
func OptionalAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextPrincipal, permission.Anonymous)
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header format"})
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "given token not valid for any token type"})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextPrincipal, service.PrincipalOf(user))
		c.Next()
	}
}

// PrincipalFrom returns the caller resolved by OptionalAuth, anonymous when
// the middleware did not run.
func PrincipalFrom(c *gin.Context) permission.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(permission.Principal); ok {
			return p
		}
	}
	return permission.Anonymous
}

// Require performs the coarse, action-level check. Object-level checks
// happen in the services once the target row is loaded.
func Require(action permission.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := permission.Evaluate(PrincipalFrom(c), action, nil)
		if d.Allowed {
			c.Next()
			return
		}
		if d.Denial == permission.DenyNotAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "you do not have permission to perform this action"})
	}
}
