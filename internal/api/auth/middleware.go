package auth

import (
	"net/http"
	"strings"

	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "playerID"

// TokenFromRequest reads a bearer token from the Authorization header, falling back
// to the "token" query parameter browsers use for websocket upgrades.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
}

// Middleware rejects requests without a valid token and stores the token subject
// as the player ID.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := TokenFromRequest(c)
		if raw == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "missing token")
			c.Abort()
			return
		}
		claims, err := tokens.Verify(raw)
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}
		c.Set(playerIDKey, claims.Subject)
		c.Next()
	}
}

// PlayerID returns the subject stored by Middleware.
func PlayerID(c *gin.Context) string {
	return c.GetString(playerIDKey)
}
