package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/makemove-fixtures/internal/service"
)

type RPCController struct {
	moveService *service.MoveService
}

func NewRPCController(moveService *service.MoveService) *RPCController {
	return &RPCController{
		moveService: moveService,
	}
}

// MakeMove answers every JSON-RPC call with HTTP 200; failures travel in
// the error member of the body.
func (rc *RPCController) MakeMove(c *fiber.Ctx) error {
	resp := rc.moveService.Handle(c.Body())
	return c.JSON(resp)
}
