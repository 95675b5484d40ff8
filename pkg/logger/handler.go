package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors/errbase"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
)

const (
	ErrorVerboseKey    = "error_verbose"
	ErrorStackTraceKey = "error_stacktrace"

	redacted = "[REDACTED]"
)

// defaultRedactKeys hold the secrets of the faucet wallet and the chainhook endpoints.
var defaultRedactKeys = []string{
	"authorization",
	"auth_token",
	"authToken",
	"token",
	"private_key",
	"privateKey",
	"api_key",
	"apiKey",
	"x-api-key",
	"password",
}

type (
	handleFunc func(context.Context, slog.Record) error
	middleware func(handleFunc) handleFunc
)

// chainHandler runs the middlewares, in order, before the wrapped handler.
type chainHandler struct {
	h           slog.Handler
	middlewares []middleware
}

func (c *chainHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.h.Enabled(ctx, level)
}

func (c *chainHandler) Handle(ctx context.Context, rec slog.Record) error {
	h := c.h.Handle
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h(ctx, rec)
}

func (c *chainHandler) WithGroup(group string) slog.Handler {
	return &chainHandler{h: c.h.WithGroup(group), middlewares: c.middlewares}
}

// WithAttrs bypasses the middlewares, attributes bound with [slog.Logger.With] must not carry secrets.
func (c *chainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &chainHandler{h: c.h.WithAttrs(attrs), middlewares: c.middlewares}
}

// redact replaces the values of secret attributes, groups included.
func redact(keys []string) middleware {
	secrets := make(map[string]struct{}, len(defaultRedactKeys)+len(keys))
	for _, key := range append(append([]string{}, defaultRedactKeys...), keys...) {
		secrets[strings.ToLower(strings.TrimSpace(key))] = struct{}{}
	}

	var redactAttr func(attr slog.Attr) slog.Attr
	redactAttr = func(attr slog.Attr) slog.Attr {
		if _, ok := secrets[strings.ToLower(attr.Key)]; ok {
			return slog.String(attr.Key, redacted)
		}
		if attr.Value.Kind() == slog.KindGroup {
			group := attr.Value.Group()
			attrs := make([]slog.Attr, len(group))
			for i, a := range group {
				attrs[i] = redactAttr(a)
			}
			return slog.Attr{Key: attr.Key, Value: slog.GroupValue(attrs...)}
		}
		return attr
	}

	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
			rec.Attrs(func(attr slog.Attr) bool {
				out.AddAttrs(redactAttr(attr))
				return true
			})
			return next(ctx, out)
		}
	}
}

// errorStackTrace adds the verbose form and the captured stack of the first logged error.
func errorStackTrace() middleware {
	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			var extra []slog.Attr
			rec.Attrs(func(attr slog.Attr) bool {
				if attr.Key != slogx.ErrorKey && attr.Key != "err" {
					return true
				}
				err, ok := attr.Value.Any().(error)
				if !ok || err == nil {
					return true
				}
				extra = append(extra, slog.String(ErrorVerboseKey, fmt.Sprintf("%+v", err)))
				if x, ok := err.(errbase.StackTraceProvider); ok {
					extra = append(extra, slog.Any(ErrorStackTraceKey, traceLines(x.StackTrace())))
				}
				return false
			})
			rec.AddAttrs(extra...)
			return next(ctx, rec)
		}
	}
}

// traceLines renders a stack as `function file:line`, dropping the runtime frames at its bottom.
func traceLines(stack errbase.StackTrace) []string {
	lines := make([]string, 0, len(stack))
	skipping := true
	for i := len(stack) - 1; i >= 0; i-- {
		pc := uintptr(stack[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			lines = append(lines, "unknown")
			skipping = false
			continue
		}
		if skipping && strings.HasPrefix(fn.Name(), "runtime.") {
			continue
		}
		skipping = false
		file, line := fn.FileLine(pc)
		lines = append(lines, fmt.Sprintf("%s %s:%d", fn.Name(), file, line))
	}
	return lines
}
