package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderAuthorization carries "Bearer <token>"
	HeaderAuthorization = "Authorization"
	// HeaderToken carries the bare token
	HeaderToken = "Token"
	// ContextKeyToken holds the extracted session token, possibly ""
	ContextKeyToken = "token"
)

// Token extracts the session token, if any, and stores it in the context.
// Validation is left to the handlers because most endpoints are public.
func Token() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyToken, ExtractToken(c))
		c.Next()
	}
}

// ExtractToken reads the token from the Authorization header (format:
// "Bearer <token>") or, failing that, from the Token header.
func ExtractToken(c *gin.Context) string {
	if authHeader := c.GetHeader(HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.GetHeader(HeaderToken))
}
