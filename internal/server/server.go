// Package server assembles the mock MakeMove API.
package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/makemove-fixtures/internal/config"
	"github.com/benbeisheim/makemove-fixtures/internal/controller"
	"github.com/benbeisheim/makemove-fixtures/internal/middleware"
	"github.com/benbeisheim/makemove-fixtures/internal/service"
)

const (
	RPCPath  = "/json-rpc"
	FeedPath = "/ws/calls"
)

// New wires services, controllers and routes into a fiber app.
func New(cfg config.Config, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "makemove-mockapi",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.HeaderRequestID,
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))

	hub := service.NewCallHub(log)
	moveService := service.NewMoveService(hub, log)

	rpcController := controller.NewRPCController(moveService)
	wsController := controller.NewWebSocketController(hub, moveService, log)

	app.Post(RPCPath, middleware.RequireJSON(), rpcController.MakeMove)
	app.Get(FeedPath, middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.CORSOrigins,
	}))

	return app
}
