package server

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rainspotter/raincam-live/metrics"
)

// RequestCounter and ErrorCounter, when set by main, receive running
// totals for the terminal HUD.
var (
	RequestCounter *int64
	ErrorCounter   *int64
)

// MetricsMiddleware records HTTP request metrics for Prometheus
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			if RequestCounter != nil {
				atomic.AddInt64(RequestCounter, 1)
			}

			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := c.Response().Status
			method := c.Request().Method

			// Use the route pattern to keep label cardinality bounded
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			statusStr := strconv.Itoa(status)

			metrics.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
			metrics.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()

			if ErrorCounter != nil && (err != nil || status >= 500) {
				atomic.AddInt64(ErrorCounter, 1)
			}

			return err
		}
	}
}
