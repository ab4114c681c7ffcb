package middleware

import (
	"os"
	"time"

	"github.com/corgadogabriel/portfolio-api/internal/contact"
	"github.com/corgadogabriel/portfolio-api/internal/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs request lines when LOG_REQUESTS=true; otherwise it is
// a no-op resolved at initialization time.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	if os.Getenv("LOG_REQUESTS") != "true" {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		clientIP := contact.Identify(c.Request.Header)
		if clientIP == contact.UnknownIdentity {
			clientIP = c.ClientIP()
		}

		logger.LogHTTPRequest(
			method,
			path,
			clientIP,
			c.Writer.Status(),
			time.Since(start).String(),
		)
	}
}
