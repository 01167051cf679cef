package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

//RequestLogger logs every request with its status and latency and records it in the http metrics
func RequestLogger(log logrus.FieldLogger, m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequest(route, c.Request.Method, strconv.Itoa(status), latency)

		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   latency,
			"client_ip": c.ClientIP(),
		})
		if c.Request.URL.RawQuery != "" {
			entry = entry.WithField("query", c.Request.URL.RawQuery)
		}
		for _, err := range c.Errors {
			entry = entry.WithError(err.Err)
		}

		switch {
		case status >= 500:
			entry.Error("Internal Server Error")
		case status >= 400:
			entry.Warn("Client Error")
		default:
			entry.Info("Request completed")
		}
	}
}

//RateLimit rejects requests with 429 once limiter has no token left. A nil limiter lets everything through.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many uploads, try again later"})
			return
		}
		c.Next()
	}
}
