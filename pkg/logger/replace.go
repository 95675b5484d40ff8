package logger

import (
	"fmt"
	"log/slog"
)

type replaceFunc func(groups []string, attr slog.Attr) slog.Attr

func chainReplacers(replacers ...replaceFunc) replaceFunc {
	return func(groups []string, attr slog.Attr) slog.Attr {
		for _, replace := range replacers {
			attr = replace(groups, attr)
		}
		return attr
	}
}

var levelNames = []struct {
	level slog.Level
	name  string
}{
	{LevelFatal, "FATAL"},
	{LevelPanic, "PANIC"},
	{LevelCritical, "CRITICAL"},
}

// replaceLevel names the levels above ERROR.
func replaceLevel(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || attr.Key != slog.LevelKey {
		return attr
	}
	level, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}
	for _, l := range levelNames {
		if level < l.level {
			continue
		}
		if level == l.level {
			return slog.String(attr.Key, l.name)
		}
		return slog.String(attr.Key, fmt.Sprintf("%s%+d", l.name, level-l.level))
	}
	return attr
}

// replaceError writes errors as their message, the JSON handler would print wrapped errors as `{}`.
func replaceError(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || (attr.Key != "error" && attr.Key != "err") {
		return attr
	}
	if err, ok := attr.Value.Any().(error); ok && err != nil {
		return slog.String(attr.Key, err.Error())
	}
	return attr
}

// replaceDuration writes durations in milliseconds.
func replaceDuration(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindDuration {
		return slog.Int64(attr.Key, attr.Value.Duration().Milliseconds())
	}
	return attr
}
