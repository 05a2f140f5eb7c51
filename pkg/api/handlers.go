// Package api exposes the publisher's observability surface over HTTP: a
// health check, a status snapshot, and a WebSocket stream of published
// commands. It cannot change the setpoint.
package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	customlog "github.com/linkerbot/hand-publisher/pkg/log"
	"github.com/linkerbot/hand-publisher/pkg/setpoint"
)

// RegisterRoutes wires all HTTP and WebSocket routes onto the app.
func RegisterRoutes(app *fiber.App, pub *setpoint.Publisher, stream *CommandStream, logger customlog.Logger) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "linker-hand setpoint publisher",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api")
	api.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(pub.Status())
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/commands", websocket.New(func(conn *websocket.Conn) {
		streamCommands(conn, stream, logger)
	}))
}

// streamCommands pushes each published command to the client until the
// connection drops.
func streamCommands(conn *websocket.Conn, stream *CommandStream, logger customlog.Logger) {
	logger.Infof("Command stream client connected: %s", conn.RemoteAddr())

	ch, cancel := stream.subscribe()
	defer cancel()

	// Reads are only used to detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			logger.Infof("Command stream client disconnected: %s", conn.RemoteAddr())
			return
		case payload := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("Command stream write failed, dropping client %s: %v", conn.RemoteAddr(), err)
				return
			}
		}
	}
}
