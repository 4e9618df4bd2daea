package middleware

import (
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"neksa/internal/dto"
)

func LoggingMiddleware() func(*ginext.Context) {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()
		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

// RequireAdmin gates administrative routes with an explicit bearer token from
// config. The token is a capability checked here at the boundary; the core
// packages never see it. An empty configured token disables the admin surface
// entirely rather than leaving it open.
func RequireAdmin(token string) func(*ginext.Context) {
	return func(c *ginext.Context) {
		if token == "" || c.GetHeader("Authorization") != "Bearer "+token {
			dto.UnauthorizedError(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
