package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		// uploaded images are served as-is
		if !strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Content-Security-Policy", "default-src 'self'")
		}

		c.Next()
	}
}
