package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/api")

	r.Get("/faucet/status", h.GetStatus)
	r.Post("/faucet/claim", h.Claim)
	r.Get("/stacks/tx/:txid", h.GetStacksTransaction)
	return nil
}
