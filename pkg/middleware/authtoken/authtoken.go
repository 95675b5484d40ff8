// Package authtoken guards routes with a static shared secret. Callers present it either as
// `Authorization: Bearer <token>` or as the `token` query parameter.
package authtoken

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

const (
	DefaultQueryKey = "token"
	bearerPrefix    = "Bearer "
)

type Config struct {
	// Token is the shared secret. An empty token rejects every request.
	Token string

	// QueryKey is the query parameter checked when the header doesn't match. Default is "token".
	QueryKey string
}

// New returns a handler that rejects requests without a matching credential with 401 Unauthorized.
func New(config Config) fiber.Handler {
	queryKey := utils.Default(config.QueryKey, DefaultQueryKey)
	if config.Token == "" {
		logger.Warn("Auth token is empty, every guarded request will be rejected",
			slogx.String("package", "authtoken"),
		)
	}

	return func(c *fiber.Ctx) error {
		if !Verify(config.Token, c.Get(fiber.HeaderAuthorization), c.Query(queryKey)) {
			logger.WarnContext(c.UserContext(), "Rejected request with missing or invalid auth token",
				slogx.String("event", "authtoken/unauthorized"),
				slogx.String("path", c.Path()),
			)
			return errs.NewPublicErrorWithStatus("Unauthorized", http.StatusUnauthorized)
		}
		return c.Next()
	}
}

// Verify reports whether the authorization header or the query token carries the expected secret.
func Verify(expected, authorization, queryToken string) bool {
	if expected == "" {
		return false
	}
	if bearer, ok := strings.CutPrefix(authorization, bearerPrefix); ok && equal(bearer, expected) {
		return true
	}
	return queryToken != "" && equal(queryToken, expected)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
