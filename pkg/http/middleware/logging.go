package middleware

import (
	"time"

	applogger "TradeScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs method, path, status, and latency for each request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			l.Info("http request",
				applogger.String("method", req.Method),
				applogger.String("path", req.URL.Path),
				applogger.Int("status", c.Response().Status),
				applogger.Dur("latency", time.Since(start)),
			)

			return err
		}
	}
}
