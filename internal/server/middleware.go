package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yildizm/nexus/internal/logger"
)

// loggingMiddleware logs one structured line per request
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.F("method", c.Request.Method),
			logger.F("path", c.Request.URL.Path),
			logger.F("status", status),
			logger.F("latency_ms", time.Since(start).Milliseconds()),
			logger.F("client_ip", c.ClientIP()),
			logger.F("user_agent", c.Request.UserAgent()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.F("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.ErrorWithFields("request failed", fields)
		case status >= 400:
			log.WarnWithFields("request rejected", fields)
		default:
			log.DebugWithFields("request served", fields)
		}
	}
}
