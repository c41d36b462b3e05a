package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// requestLogger logs one line per request and records request metrics.
func requestLogger(log logrus.FieldLogger, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := routeLabel(c)
		if m != nil {
			m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(route, c.Request.Method).Observe(elapsed.Seconds())
		}

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"duration": elapsed.String(),
			"client":   c.ClientIP(),
		})
		if id := currentIdentity(c); id.Authenticated() {
			entry = entry.WithField("user_id", id.User.ID)
		}
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
