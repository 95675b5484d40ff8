package httphandler

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getUserActivityRequest struct {
	Address string `params:"address"`
}

func (r *getUserActivityRequest) Validate() error {
	address, err := url.PathUnescape(r.Address)
	if err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	r.Address = strings.TrimSpace(address)
	if r.Address == "" {
		return errs.NewPublicError("validation error: 'address' is required")
	}
	return nil
}

type getUserActivityResponse struct {
	Address        string          `json:"address"`
	TotalMints     int             `json:"totalMints"`
	TotalTransfers int             `json:"totalTransfers"`
	TotalBurns     int             `json:"totalBurns"`
	Mints          []mintEvent     `json:"mints"`
	Transfers      []transferEvent `json:"transfers"`
	Burns          []burnEvent     `json:"burns"`
}

func (h *HttpHandler) GetUserActivity(ctx *fiber.Ctx) error {
	var req getUserActivityRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	activity := h.usecase.GetUserActivity(ctx.UserContext(), req.Address)
	return errors.WithStack(ctx.JSON(getUserActivityResponse{
		Address:        activity.Address,
		TotalMints:     len(activity.Mints),
		TotalTransfers: len(activity.Transfers),
		TotalBurns:     len(activity.Burns),
		Mints:          mapMintEvents(activity.Mints),
		Transfers:      mapTransferEvents(activity.Transfers),
		Burns:          mapBurnEvents(activity.Burns),
	}))
}
