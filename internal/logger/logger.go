package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Type alias for slog.Level for easier usage
type Level = slog.Level

const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
)

var programLevel = new(slog.LevelVar)

// ParseLevel converts a level name (case-insensitive) to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Setup installs a JSON logger on stdout as the slog default. An unknown
// level falls back to INFO and is reported in the returned error.
func Setup(level string) (*slog.Logger, error) {
	return SetupWriter(os.Stdout, level)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	programLevel.Set(lvl)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: programLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	})
	l := slog.New(handler)
	slog.SetDefault(l)
	return l, err
}

// SetLevel changes the level of every logger created by Setup
func SetLevel(level Level) {
	programLevel.Set(level)
}
