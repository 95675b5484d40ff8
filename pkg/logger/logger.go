// nolint: sloglint
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// Levels above [slog.LevelError].
const (
	LevelCritical = slog.Level(12)
	LevelPanic    = slog.Level(14)
	LevelFatal    = slog.Level(16)
)

var (
	// minimum reporting level of the global logger
	lvl = new(slog.LevelVar)

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevel,
	}))
)

func init() {
	lvl.Set(slog.LevelDebug)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

type Config struct {
	// Output format, `text` (default) or `json`.
	Output string `mapstructure:"output"`

	// Debug lowers the level to DEBUG and adds the source and error stack traces to every record.
	Debug bool `mapstructure:"debug"`

	// RedactKeys are attribute keys whose values are never written, matched case-insensitively.
	// Credentials of this service are always redacted.
	RedactKeys []string `mapstructure:"redact_keys"`
}

// Init replaces the global logger and the default slog logger.
func Init(cfg Config) error {
	logger = slog.New(newHandler(os.Stdout, cfg))
	slog.SetDefault(logger)
	return nil
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	options := &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: chainReplacers(replaceLevel, replaceError, replaceDuration),
	}
	middlewares := []middleware{redact(cfg.RedactKeys)}

	lvl.Set(slog.LevelInfo)
	if cfg.Debug {
		lvl.Set(slog.LevelDebug)
		options.AddSource = true
		middlewares = append(middlewares, errorStackTrace())
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Output, "json") {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	return &chainHandler{h: handler, middlewares: middlewares}
}

// SetLevel sets the minimum reporting level and returns the previous one.
func SetLevel(level slog.Level) (old slog.Level) {
	old = lvl.Level()
	lvl.Set(level)
	return old
}

// With returns a child of the global logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

func WithGroup(group string) *slog.Logger {
	return logger.WithGroup(group)
}

func Debug(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelError, msg, args...)
}

// Panic logs at [LevelPanic] and then panics with msg.
func Panic(msg string, args ...any) {
	log(context.Background(), logger, LevelPanic, msg, args...)
	panic(msg)
}

// Fatal logs at [LevelFatal] and exits the process with status 1.
func Fatal(msg string, args ...any) {
	log(context.Background(), logger, LevelFatal, msg, args...)
	os.Exit(1)
}

func Log(level slog.Level, msg string, args ...any) {
	log(context.Background(), logger, level, msg, args...)
}

// LogAttrs logs with the logger of ctx, accepting only attributes.
func LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	l := FromContext(ctx)
	if !l.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, callerPC(3))
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

// log must be called directly by an exported function so the reported source is its caller.
func log(ctx context.Context, l *slog.Logger, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, callerPC(4))
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

// callerPC skips runtime.Callers and callerPC itself at 0 and 1.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	return pcs[0]
}
