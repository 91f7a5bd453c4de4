package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".svg": {}, ".ico": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
}

// CacheControl marks API responses uncacheable and static assets long-lived.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path

		switch {
		case strings.HasPrefix(p, "/api"):
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		case isStaticAsset(p):
			c.Header("Cache-Control", "public, max-age=31536000")
		}

		c.Next()
	}
}

func isStaticAsset(p string) bool {
	_, ok := staticExtensions[strings.ToLower(path.Ext(p))]
	return ok
}
