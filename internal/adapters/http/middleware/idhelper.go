package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxInboundIDLength bounds caller-supplied IDs before they reach logs and headers.
const maxInboundIDLength = 128

// idSpec describes one ID header: where it is read from and echoed to, the
// gin key it is stored under, and how it is threaded into the request context.
type idSpec struct {
	header string
	key    string

	// reuse decides whether an inbound value is kept. Nil means printableID.
	reuse func(id string) bool

	// attach runs in order against the request context.
	attach []attachFunc

	// mintedKey, when set, is the gin key marked true for a generated ID.
	mintedKey string
}

// propagate keeps an acceptable inbound ID or mints a UUID, then echoes it
// on the response.
func propagate(cfg idSpec) gin.HandlerFunc {
	reuse := cfg.reuse
	if reuse == nil {
		reuse = printableID
	}

	return func(c *gin.Context) {
		id := c.GetHeader(cfg.header)
		if id == "" || !reuse(id) {
			id = uuid.NewString()
			if cfg.mintedKey != "" {
				c.Set(cfg.mintedKey, true)
			}
		}

		c.Set(cfg.key, id)
		c.Header(cfg.header, id)

		ctx := c.Request.Context()
		for _, fn := range cfg.attach {
			ctx = fn(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func printableID(id string) bool {
	if len(id) > maxInboundIDLength {
		return false
	}
	for _, b := range []byte(id) {
		if b < '!' || b > '~' {
			return false
		}
	}
	return true
}

func idFrom(c *gin.Context, key string) string {
	return c.GetString(key)
}
