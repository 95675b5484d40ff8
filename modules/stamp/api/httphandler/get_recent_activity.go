package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/modules/stamp/internal/entity"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// activity items are the event fields plus a `type` discriminator
type (
	mintActivity struct {
		mintEvent
		Type entity.EventKind `json:"type"`
	}
	transferActivity struct {
		transferEvent
		Type entity.EventKind `json:"type"`
	}
	burnActivity struct {
		burnEvent
		Type entity.EventKind `json:"type"`
	}
)

func (h *HttpHandler) GetRecentActivity(ctx *fiber.Ctx) error {
	limit := queryIntOrDefault(ctx, "limit", usecase.DefaultActivityLimit)
	activities := h.usecase.GetRecentActivity(ctx.UserContext(), limit)

	resp := lo.Map(activities, func(a entity.Activity, _ int) any {
		switch a.Kind {
		case entity.EventKindMint:
			return mintActivity{mintEvent: mapMintEvent(*a.Mint), Type: a.Kind}
		case entity.EventKindTransfer:
			return transferActivity{transferEvent: mapTransferEvent(*a.Transfer), Type: a.Kind}
		default:
			return burnActivity{burnEvent: mapBurnEvent(*a.Burn), Type: a.Kind}
		}
	})
	return errors.WithStack(ctx.JSON(resp))
}
