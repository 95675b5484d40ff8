package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getStatsResponse struct {
	TotalMints     uint64 `json:"totalMints"`
	PaidMints      uint64 `json:"paidMints"`
	FreeMints      uint64 `json:"freeMints"`
	OwnerMints     uint64 `json:"ownerMints"`
	TotalTransfers uint64 `json:"totalTransfers"`
	TotalBurns     uint64 `json:"totalBurns"`
	ActiveUsers    int    `json:"activeUsers"`
}

func (h *HttpHandler) GetStats(ctx *fiber.Ctx) error {
	stats := h.usecase.GetStats(ctx.UserContext())
	return errors.WithStack(ctx.JSON(getStatsResponse{
		TotalMints:     stats.TotalMints,
		PaidMints:      stats.PaidMints,
		FreeMints:      stats.FreeMints,
		OwnerMints:     stats.OwnerMints,
		TotalTransfers: stats.TotalTransfers,
		TotalBurns:     stats.TotalBurns,
		ActiveUsers:    stats.ActiveUsers,
	}))
}
