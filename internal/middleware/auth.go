package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/access"
	"github.com/huangang/taskflow/backend/internal/utils"
	"github.com/huangang/taskflow/backend/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return authenticate(false)
}

// StreamAuthRequired also accepts the token as a "token" query parameter,
// since EventSource and browser WebSocket clients cannot set headers.
func StreamAuthRequired() gin.HandlerFunc {
	return authenticate(true)
}

func authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, reason := bearerToken(c, allowQuery)
		if reason != "" {
			response.Unauthorized(c, reason)
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, access.ParseRole(claims.Role))

		c.Next()
	}
}

// bearerToken returns the raw token or a message describing why none was found.
func bearerToken(c *gin.Context, allowQuery bool) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if allowQuery {
			if token := c.Query("token"); token != "" {
				return token, ""
			}
		}
		return "", "authorization header required"
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "invalid authorization header format"
	}
	return strings.TrimSpace(parts[1]), ""
}

// ElevatedRequired lets only managers and admins through.
func ElevatedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRole(c).Elevated() {
			response.Forbidden(c, "manager or admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// GetRole returns Standard when no role was set.
func GetRole(c *gin.Context) access.Role {
	if role, exists := c.Get(ContextRole); exists {
		if r, ok := role.(access.Role); ok {
			return r
		}
	}
	return access.Standard
}

// GetActor bundles the caller's id and role for the service layer.
func GetActor(c *gin.Context) access.Actor {
	return access.Actor{ID: GetUserID(c), Role: GetRole(c)}
}
