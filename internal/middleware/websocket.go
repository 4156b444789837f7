package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade lets only websocket handshakes through and carries the
// request id across the upgrade as the client id.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		requestID := c.Locals(LocalRequestID)
		if requestID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "request ID is required",
			})
		}

		c.Locals("wsClientID", requestID)
		return c.Next()
	}
}
