package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

// HandleLogging logs one line per request with method, path, status and
// latency.
func HandleLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infof("Request: Method=%s | Path=%s | Status=%d | IP=%s | Duration=%v",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(start),
		)
	}
}
