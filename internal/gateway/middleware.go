package gateway

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Bootstrapper runs the once-per-process store initialization check.
type Bootstrapper interface {
	Ensure(ctx context.Context)
}

// Middleware installs tenant dispatch in front of the platform's own
// routes. Requests that resolve to a project are answered from their
// execution context; everything else falls through to the next handler.
func Middleware(boot Bootstrapper, d *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		boot.Ensure(c.Request.Context())

		if d.Dispatch(c) {
			c.Abort()
			return
		}
		c.Next()
	}
}
