// server/internal/api/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
)

// Context keys set by Authenticate.
const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextUserEmail = "user_email"
)

type TokenParser interface {
	ParseToken(tokenString string) (*auth.JWTClaims, error)
}

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate validates the bearer token and puts the caller on the context.
// Role and email come from the stored account, so a role change or deletion
// takes effect on the next request rather than when the token expires.
func Authenticate(tokens TokenParser, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, string(user.Role))
		c.Set(ContextUserEmail, user.Email)

		c.Next()
	}
}

// Authorize only lets callers with one of the given roles through.
func Authorize(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}

		if hasRole(userRole, allowedRoles) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// OwnerOrRoles lets the caller through when the path parameter param equals
// their user id, or when they hold one of roles.
func OwnerOrRoles(param string, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, _ := c.Get(ContextUserRole)
		if c.GetString(ContextUserID) == c.Param(param) || hasRole(userRole, roles) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

func hasRole(userRole any, allowed []models.Role) bool {
	role, ok := userRole.(string)
	if !ok {
		return false
	}
	for _, r := range allowed {
		if string(r) == role {
			return true
		}
	}
	return false
}
