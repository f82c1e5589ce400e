package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/freshsave/pkg/logger"
)

// StructuredLoggingMiddleware writes one log line per request, after the
// response is known. Runs inside TracingMiddleware so lines carry trace ids.
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		log := logger.WithContext(c.UserContext())

		event := log.Info()
		switch {
		case err != nil || status >= 500:
			event = log.Error().Err(err)
		case status >= 400:
			event = log.Warn()
		}

		userID, _ := c.Locals("user_id").(string)
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", status).
			Dur("duration", duration).
			Int("response_size", len(c.Response().Body())).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("user_id", userID).
			Str("cache", c.GetRespHeader("X-Cache")).
			Msg("Gateway request completed")

		return err
	}
}
