package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getTransfersResponse = pageResponse[transferEvent]

func (h *HttpHandler) GetTransfers(ctx *fiber.Ctx) error {
	req := parsePaginationRequest(ctx)
	page := h.usecase.GetTransfers(ctx.UserContext(), req.Limit, req.Offset)
	return errors.WithStack(ctx.JSON(getTransfersResponse{
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
		Data:   mapTransferEvents(page.Data),
	}))
}
