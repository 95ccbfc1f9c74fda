package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shuke0908/quantauth/domain"
)

// Context keys set by the auth middleware.
const (
	ContextIdentity = "identity"
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// unauthorized writes the uniform rejection. No failure category leaks
// which check failed.
func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	c.Abort()
}

// extractToken returns the access token from the Authorization header or,
// failing that, the session cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
			return tokenParts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware creates authentication middleware. It never mutates
// state on a failed check.
func AuthMiddleware(tokenSvc domain.TokenService, observe func(result string)) gin.HandlerFunc {
	if observe == nil {
		observe = func(string) {}
	}
	return gin.HandlerFunc(func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			observe("missing")
			unauthorized(c)
			return
		}

		claims, err := tokenSvc.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			observe("invalid")
			unauthorized(c)
			return
		}

		observe("ok")
		identity := &domain.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
			Epoch:  claims.Epoch,
		}
		c.Set(ContextIdentity, identity)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)

		c.Next()
	})
}

// IdentityFrom returns the authenticated identity set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*domain.Identity)
	return identity, ok
}
