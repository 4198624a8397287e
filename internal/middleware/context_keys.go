package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// userIDKey is the key used to store the authenticated user's ID in the request context.
const userIDKey = contextKey("userID")

// callerKey is the key used to store the resolved auth caller in the request context.
const callerKey = contextKey("caller")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}

// GetCallerFromContext retrieves the resolved caller identity from the Gin
// context. The auth middleware builds it once per request; handlers pass it
// down to services unchanged.
func GetCallerFromContext(c *gin.Context) (domain.Caller, bool) {
	callerVal := c.Request.Context().Value(callerKey)
	if callerVal == nil {
		return domain.Caller{}, false
	}

	caller, ok := callerVal.(domain.Caller)
	if !ok {
		return domain.Caller{}, false
	}

	return caller, true
}
