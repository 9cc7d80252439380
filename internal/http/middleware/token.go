package middleware

import (
	"net/http"
	"strings"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by TokenAuth.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
)

const bearerTokenPrefix = "Bearer "

// TokenAuth verifies the Authorization bearer JWT and stashes the caller's
// identity in the gin context. Tokens from the legacy username-only path
// have no subject; those requests get an empty CtxUserID.
func TokenAuth(maker *token.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, bearerTokenPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization scheme, 'Bearer' prefix required",
			})
			return
		}

		claims, err := maker.VerifyToken(strings.TrimPrefix(authHeader, bearerTokenPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxUsername, claims.Username)
		c.Next()
	}
}

// UserIDFromContext parses the authenticated caller's user ID.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(CtxUserID)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
