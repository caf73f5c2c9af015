package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/config"
	"golang.org/x/crypto/bcrypt"
)

const ClientKey = "client"

// PresenterAuth accepts a presenter JWT from the Authorization header or,
// for EventSource clients that cannot set headers, the token query parameter.
func PresenterAuth(sec config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenStr = strings.TrimPrefix(h, "Bearer ")
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil || claims.Scope != ScopePresenter {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ClientKey, claims.Client)
		c.Next()
	}
}

// GetClient returns the authenticated client name.
func GetClient(c *gin.Context) string {
	return c.GetString(ClientKey)
}

// AdminAuth checks the X-Admin-Key header against adminKey, which may be a
// bcrypt hash. With no key configured the admin routes answer 503.
func AdminAuth(adminKey string) gin.HandlerFunc {
	hashed := strings.HasPrefix(adminKey, "$2a$") || strings.HasPrefix(adminKey, "$2b$") || strings.HasPrefix(adminKey, "$2y$")
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		var ok bool
		if hashed {
			ok = bcrypt.CompareHashAndPassword([]byte(adminKey), []byte(key)) == nil
		} else {
			ok = subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
