package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/modules/stamp/chainhook"
	"github.com/gaze-network/stamp-indexer/modules/stamp/usecase"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gaze-network/stamp-indexer/pkg/metrics"
	"github.com/gofiber/fiber/v2"
)

type webhookResponse struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
}

// Webhook handles a chainhook delivery for one route.
func (h *HttpHandler) Webhook(route usecase.WebhookRoute) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		payload, err := chainhook.Decode(ctx.Body())
		if err != nil {
			metrics.WebhookRequests.WithLabelValues(route.String(), "invalid_payload").Inc()
			return errs.WithPublicStatus(err, "Invalid payload", http.StatusBadRequest)
		}

		processed, err := h.usecase.ProcessPayload(ctx.UserContext(), route, payload)
		if err != nil {
			metrics.WebhookRequests.WithLabelValues(route.String(), "failed").Inc()
			logger.ErrorContext(ctx.UserContext(), "Webhook processing error",
				slogx.Stringer("route", route),
				slogx.Error(err),
			)
			return errs.WithPublicStatus(err, errors.UnwrapAll(err).Error(), http.StatusInternalServerError)
		}

		metrics.WebhookRequests.WithLabelValues(route.String(), "processed").Inc()
		return errors.WithStack(ctx.JSON(webhookResponse{
			Success:   true,
			Processed: processed,
		}))
	}
}
