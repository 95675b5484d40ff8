package httphandler

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

type getStacksTransactionRequest struct {
	TxId string `params:"txid"`
}

func (r *getStacksTransactionRequest) Validate() error {
	r.TxId = strings.TrimSpace(r.TxId)
	if r.TxId == "" {
		return errs.NewPublicError("validation error: 'txid' is required")
	}
	return nil
}

type fetchFailedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetStacksTransaction relays a transaction lookup to the Stacks API. Upstream failures keep their status and body.
func (h *HttpHandler) GetStacksTransaction(ctx *fiber.Ctx) error {
	var req getStacksTransactionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	resp, err := h.transactions.GetTransaction(ctx.UserContext(), req.TxId)
	if err != nil {
		logger.WarnContext(ctx.UserContext(), "Failed to fetch transaction", slogx.String("txId", req.TxId), slogx.Error(err))
		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(fetchFailedResponse{
			Error:   "Failed to fetch tx",
			Message: err.Error(),
		}))
	}

	if !resp.IsSuccess() {
		if resp.ContentType != "" {
			ctx.Set(fiber.HeaderContentType, resp.ContentType)
		}
		return errors.WithStack(ctx.Status(resp.StatusCode).Send(resp.Body))
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return errors.WithStack(ctx.Send(resp.Body))
}
