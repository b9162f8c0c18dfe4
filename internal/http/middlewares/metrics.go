package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planhub/planhub/internal/observability"
)

// Metrics records request counts, latency and in-flight gauges per route.
func Metrics(prom *observability.Prom) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := c.Request.Method

		prom.InFlight.WithLabelValues(method, route).Inc()
		start := time.Now()

		c.Next()

		elapsed := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		prom.InFlight.WithLabelValues(method, route).Dec()
		prom.RequestsTotal.WithLabelValues(method, route, status).Inc()
		prom.RequestsDuration.WithLabelValues(method, route, status).Observe(elapsed)
	}
}
