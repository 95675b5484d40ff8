package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error string `json:"error"`
}

// kindStatuses maps the error kinds that are safe to expose to their status. The body carries the status text
// only, never the internal message.
var kindStatuses = []struct {
	kind   errs.ErrorKind
	status int
}{
	{errs.NotFound, http.StatusNotFound},
	{errs.Unauthorized, http.StatusUnauthorized},
	{errs.Forbidden, http.StatusForbidden},
	{errs.Conflict, http.StatusConflict},
	{errs.TooManyRequests, http.StatusTooManyRequests},
	{errs.Unavailable, http.StatusServiceUnavailable},
	{errs.Timeout, http.StatusGatewayTimeout},
}

// NewHTTPErrorHandler returns the fiber error handler. Every error body is rendered as `{"error": <message>}`.
func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Status()).JSON(errorResponse{Error: e.Message()}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).JSON(errorResponse{Error: e.Message}))
		}
		for _, k := range kindStatuses {
			if errors.Is(err, k.kind) {
				logger.WarnContext(ctx.UserContext(), "Request failed", slogx.Error(err), slogx.Int("status", k.status))
				return errors.WithStack(ctx.Status(k.status).JSON(errorResponse{Error: http.StatusText(k.status)}))
			}
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			slogx.String("event", "api_unhandled_error"),
			slogx.Error(err),
		)
		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error: "Internal Server Error",
		}))
	}
}
