// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"printer-server/internal/utils"
)

// LoggingMiddleware logs every request after it is served. Paths in quiet,
// such as liveness probes, are only logged when they fail.
func LoggingMiddleware(logger *utils.ServiceLogger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, path := range quiet {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if _, ok := skip[c.Request.URL.Path]; ok && status < 400 {
			return
		}

		logger.LogAPIRequest(utils.APIRequest{
			RequestID:  utils.GetRequestID(c),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			UserAgent:  c.Request.UserAgent(),
			ClientIP:   c.ClientIP(),
			StatusCode: status,
			Duration:   time.Since(start),
		})
	}
}
