// Package requestcontext resolves per-request values (request id, client IP) once and stores them in the
// request's user context for handlers and loggers.
package requestcontext

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// Option derives the request context. A returned [errs.PublicError] is rendered to the client as is.
type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for i, opt := range opts {
			next, err := opt(ctx, c)
			if err != nil {
				var publicErr *errs.PublicError
				if errors.As(err, &publicErr) {
					return errors.WithStack(err)
				}
				logger.ErrorContext(ctx, "Failed to extract request context",
					slogx.Error(err),
					slogx.String("event", "requestcontext/error"),
					slogx.Int("optionIndex", i),
				)
				return errors.Wrap(err, "can't extract request context")
			}
			ctx = next
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
