package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// NoCacheMiddleware disables client and proxy caching for paths under prefix.
func NoCacheMiddleware(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
