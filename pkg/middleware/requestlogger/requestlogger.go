package requestlogger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
)

const redacted = "[REDACTED]"

type Config struct {
	WithRequestHeader    bool     `mapstructure:"request_header"`
	WithRequestQuery     bool     `mapstructure:"request_query"`
	Disable              bool     `mapstructure:"disable"` // Disable logger level `INFO`
	HiddenRequestHeaders []string `mapstructure:"hidden_request_headers"`

	// HiddenQueryParams are replaced before the query is logged. Webhook callers may carry their shared secret as `?token=`.
	HiddenQueryParams []string `mapstructure:"hidden_query_params"`

	// SkipPaths are never logged at level `INFO` (e.g. health probes and metric scrapes).
	SkipPaths []string `mapstructure:"skip_paths"`
}

// New logs every completed request with its latency, status and client information.
func New(config Config) fiber.Handler {
	hiddenRequestHeaders := toSet(append([]string{fiber.HeaderAuthorization}, config.HiddenRequestHeaders...))
	hiddenQueryParams := toSet(append([]string{"token"}, config.HiddenQueryParams...))
	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Continue stack
		err := c.Next()

		end := time.Now()
		latency := end.Sub(start)
		status := c.Response().StatusCode()

		level := slog.LevelInfo
		if err != nil || status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		if level == slog.LevelInfo {
			if _, skip := skipPaths[c.Path()]; skip || config.Disable {
				return errors.WithStack(err)
			}
		}

		baseAttrs := []slog.Attr{
			slog.String("event", "api_request"),
			slog.String("requestId", requestcontext.GetRequestId(c.UserContext())),
			slog.Duration("latency", latency),
			slog.String("latencyHuman", latency.String()),
		}

		queries := c.Queries()
		for key := range queries {
			if _, hidden := hiddenQueryParams[strings.ToLower(key)]; hidden {
				queries[key] = redacted
			}
		}

		requestAttributes := []slog.Attr{
			slog.Time("time", start),
			slog.String("method", c.Method()),
			slog.String("host", c.Hostname()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.String("ip", requestcontext.GetClientIP(c.UserContext())),
			slog.String("remoteIP", c.Context().RemoteIP().String()),
			slog.Any("x-forwarded-for", c.IPs()),
			slog.String("user-agent", string(c.Context().UserAgent())),
			slog.Any("params", c.AllParams()),
			slog.Int("length", len(c.Body())),
		}
		if config.WithRequestQuery {
			requestAttributes = append(requestAttributes, slog.Any("query", queries))
		}

		if config.WithRequestHeader {
			kv := []any{}
			for k, v := range c.GetReqHeaders() {
				if _, found := hiddenRequestHeaders[strings.ToLower(k)]; found {
					kv = append(kv, slog.String(k, redacted))
					continue
				}
				kv = append(kv, slog.Any(k, v))
			}
			requestAttributes = append(requestAttributes, slog.Group("header", kv...))
		}

		responseAttributes := []slog.Attr{
			slog.Time("time", end),
			slog.Int("status", status),
			slog.Int("length", len(c.Response().Body())),
		}

		if level == slog.LevelError {
			logErr := err
			if logErr == nil {
				logErr = fiber.NewError(status)
			}
			baseAttrs = append(baseAttrs, slog.Any("error", logErr))
		}

		logger.LogAttrs(c.UserContext(), level, "Request Completed", append([]slog.Attr{
			{
				Key:   "request",
				Value: slog.GroupValue(requestAttributes...),
			},
			{
				Key:   "response",
				Value: slog.GroupValue(responseAttributes...),
			},
		}, baseAttrs...)...,
		)

		return errors.WithStack(err)
	}
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[strings.TrimSpace(strings.ToLower(key))] = struct{}{}
	}
	return set
}
