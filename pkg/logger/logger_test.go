package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, cfg Config, level slog.Level, msg string, attrs ...slog.Attr) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = "json"
	l := slog.New(newHandler(&buf, cfg))
	l.LogAttrs(context.Background(), level, msg, attrs...)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	return out
}

func TestRedact(t *testing.T) {
	out := record(t, Config{RedactKeys: []string{"Seed"}}, slog.LevelInfo, "configured",
		slog.String("privateKey", "edf9"),
		slog.String("seed", "words"),
		slog.String("address", "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13"),
		slog.Group("header", slog.String("Authorization", "Bearer s3cret"), slog.String("Accept", "*/*")),
	)

	assert.Equal(t, redacted, out["privateKey"])
	assert.Equal(t, redacted, out["seed"])
	assert.Equal(t, "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13", out["address"])
	assert.Equal(t, map[string]any{"Authorization": redacted, "Accept": "*/*"}, out["header"])
}

func TestReplacers(t *testing.T) {
	out := record(t, Config{}, LevelPanic, "boom",
		slog.Duration("latency", 1500*time.Millisecond),
		slog.Any("error", errors.Wrap(errors.New("root"), "wrapped")),
	)

	assert.Equal(t, "PANIC", out[slog.LevelKey])
	assert.EqualValues(t, 1500, out["latency"])
	assert.Equal(t, "wrapped: root", out["error"])
	assert.NotContains(t, out, ErrorVerboseKey)
}

func TestReplaceLevel(t *testing.T) {
	test := func(level slog.Level, expected string) {
		t.Run(expected, func(t *testing.T) {
			attr := replaceLevel(nil, slog.Any(slog.LevelKey, level))
			assert.Equal(t, expected, attr.Value.String())
		})
	}
	test(slog.LevelError, "ERROR")
	test(LevelCritical, "CRITICAL")
	test(LevelCritical+1, "CRITICAL+1")
	test(LevelPanic, "PANIC")
	test(LevelFatal, "FATAL")
	test(LevelFatal+2, "FATAL+2")
}

func TestDebugStackTrace(t *testing.T) {
	out := record(t, Config{Debug: true}, slog.LevelError, "failed", slog.Any("error", errors.New("boom")))

	assert.Equal(t, "boom", out["error"])
	assert.Contains(t, out[ErrorVerboseKey], "boom")
	assert.NotEmpty(t, out[ErrorStackTraceKey])
	assert.Contains(t, out, slog.SourceKey)
}
