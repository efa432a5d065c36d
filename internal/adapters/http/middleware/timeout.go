package middleware

import (
	"context"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// Deadline gives each request context a timeout. The handler and the
// outbound client see ctx.Done and stop on their own; the response is never
// cut off from here. Routes listed in exempt, matched on gin's FullPath,
// only get the server's read and write limits.
func Deadline(timeout time.Duration, exempt ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(exempt, c.FullPath()) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
