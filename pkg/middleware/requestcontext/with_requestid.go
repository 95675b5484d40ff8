package requestcontext

import (
	"context"

	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type requestIdKey struct{}

// GetRequestId returns the id of the request, or empty when the request context middleware did not run.
func GetRequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}

// WithRequestId reuses the id set by the requestid middleware, else the caller's `X-Request-ID`, else a new one.
// The id is echoed in the response and bound to the request logger.
func WithRequestId() Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		requestId, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if requestId == "" {
			requestId = c.Get(requestid.ConfigDefault.Header)
			if requestId == "" {
				requestId = uuid.NewString()
			}
			c.Set(requestid.ConfigDefault.Header, requestId)
			c.Locals(requestid.ConfigDefault.ContextKey, requestId)
		}

		ctx = context.WithValue(ctx, requestIdKey{}, requestId)
		return logger.WithContext(ctx, "requestId", requestId), nil
	}
}
