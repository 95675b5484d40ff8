package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getHealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// GetHealth reports liveness with the server time in unix milliseconds.
func GetHealth(ctx *fiber.Ctx) error {
	return errors.WithStack(ctx.JSON(getHealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UnixMilli(),
	}))
}

func (h *HttpHandler) GetHealth(ctx *fiber.Ctx) error {
	return GetHealth(ctx)
}
