package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"gmao-system/pkg/metrics"
)

// Metrics собирает gmao_http_* метрики. В лейбл пути идёт шаблон маршрута
// (/api/equipment/:id), а не реальный URL, чтобы не раздувать кардинальность.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unknown"
			}
			status := strconv.Itoa(c.Response().Status)

			metrics.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
