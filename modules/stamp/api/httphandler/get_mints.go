package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gofiber/fiber/v2"
)

type paginationRequest struct {
	Limit  int
	Offset int
}

func parsePaginationRequest(ctx *fiber.Ctx) paginationRequest {
	return paginationRequest{
		Limit:  queryIntOrDefault(ctx, "limit", usecase.DefaultPageLimit),
		Offset: queryIntOrDefault(ctx, "offset", 0),
	}
}

type pageResponse[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Data   []T `json:"data"`
}

type getMintsResponse = pageResponse[mintEvent]

func (h *HttpHandler) GetMints(ctx *fiber.Ctx) error {
	req := parsePaginationRequest(ctx)
	page := h.usecase.GetMints(ctx.UserContext(), req.Limit, req.Offset)
	return errors.WithStack(ctx.JSON(getMintsResponse{
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
		Data:   mapMintEvents(page.Data),
	}))
}
