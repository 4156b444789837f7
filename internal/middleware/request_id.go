package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "requestID"
)

// RequestID tags every request with an id, reusing the caller's header
// when one is sent.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(LocalRequestID) != nil {
			return c.Next()
		}

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Locals(LocalRequestID, requestID)
		c.Set(HeaderRequestID, requestID)
		return c.Next()
	}
}

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		event := log.Info()
		if status >= fiber.StatusBadRequest {
			event = log.Warn()
		}
		requestID, _ := c.Locals(LocalRequestID).(string)
		event.Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return err
	}
}

// RequireJSON rejects request bodies that are not declared as JSON.
func RequireJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
		if !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "content type must be application/json",
			})
		}
		return c.Next()
	}
}
