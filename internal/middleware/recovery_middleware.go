// internal/middleware/recovery_middleware.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-server/internal/utils"
)

// RecoveryMiddleware turns a handler panic into a bare 500. The panic value
// and stack are logged only.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		logger.Error("Request handler panicked",
			zap.String("request_id", utils.GetRequestID(c)),
			zap.String("route", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.String("client_ip", c.ClientIP()),
			zap.Any("panic", recovered),
			zap.Stack("stacktrace"),
		)

		if c.Writer.Written() {
			c.Abort()
			return
		}
		utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
	})
}
