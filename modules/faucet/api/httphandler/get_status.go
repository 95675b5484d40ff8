package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gofiber/fiber/v2"
)

type getStatusResponse struct {
	Enabled         bool           `json:"enabled"`
	Network         common.Network `json:"network"`
	Address         string         `json:"address"`
	AmountSTX       string         `json:"amountStx"`
	CooldownMinutes int            `json:"cooldownMinutes"`
}

func (h *HttpHandler) GetStatus(ctx *fiber.Ctx) error {
	status := h.usecase.GetStatus(ctx.UserContext())
	return errors.WithStack(ctx.JSON(getStatusResponse{
		Enabled:         status.Enabled,
		Network:         status.Network,
		Address:         status.Address,
		AmountSTX:       status.AmountSTX,
		CooldownMinutes: status.CooldownMinutes,
	}))
}
