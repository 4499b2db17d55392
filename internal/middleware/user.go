package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const userEmailKey = "user_email"

// TokenVerifier resolves a signed user token to an email.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// UserToken stores the email of a verified bearer user token on the
// context. Requests without one pass through anonymous.
func UserToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if ok && verifier != nil {
			if email, err := verifier.Verify(strings.TrimSpace(raw)); err == nil {
				c.Set(userEmailKey, email)
			}
		}
		c.Next()
	}
}

// UserEmail returns the verified email, or "" for anonymous requests.
func UserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}
