package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/oakmere/thermalview/internal/infrastructure/config"
)

const serviceName = "thermalview"

// Logger is a slog.Logger carrying the service identity on every
// entry. Construct with New or Default; methods are safe for
// concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from config: JSON or text format, stdout or
// stderr, filtered at the configured level.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return newWriterLogger(cfg, version, w)
}

// newWriterLogger is the writer-injectable core of New. Tests use it
// to capture output.
func newWriterLogger(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	h = h.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(h)}
}

// parseLevel maps a config level string onto slog. Unrecognised
// values fall back to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child Logger with extra default attributes, typically
// a component tag:
//
//	connLog := log.With("component", "connectivity")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the bootstrap logger for use before configuration loads:
// JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json"}, "dev")
}
