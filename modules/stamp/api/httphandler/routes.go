package httphandler

import (
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gofiber/fiber/v2"
)

// legacyTransferPath is kept for predicates registered before the route was renamed.
const legacyTransferPath = "/transfers"

// MountWebhooks mounts the chainhook webhook routes. Callers guard the router with the auth token middleware.
func (h *HttpHandler) MountWebhooks(router fiber.Router) error {
	for _, route := range usecase.WebhookRoutes {
		router.Post(route.Path(), h.Webhook(route))
	}
	router.Post(legacyTransferPath, h.Webhook(usecase.WebhookRouteTransfer))
	return nil
}

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/api")

	r.Get("/stats", h.GetStats)
	r.Get("/mints", h.GetMints)
	r.Get("/transfers", h.GetTransfers)
	r.Get("/activity/recent", h.GetRecentActivity)
	r.Get("/user/:address", h.GetUserActivity)
	r.Get("/health", h.GetHealth)
	return nil
}
