package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandevgo/buddybot/pkg/log"
)

// Logger puts the service logger on every request context and logs the outcome.
func Logger(ctx context.Context) gin.HandlerFunc {
	base := log.FromCtx(ctx)

	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(base.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		ev := base.Debug()
		if status >= 500 {
			ev = base.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
