package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log output formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Output  io.Writer // defaults to os.Stdout
	Level   string    // debug, info, warn or error; slog offsets like "info+2" also parse
	Format  string    // json or text
	Service string
}

// ParseLevel accepts the slog level names in any case plus "warning".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// ValidateLogConfig rejects a level or format NewLogger would silently replace.
func ValidateLogConfig(level, format string) error {
	if _, err := ParseLevel(level); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case LogFormatJSON, LogFormatText:
		return nil
	default:
		return fmt.Errorf("log format %q: want %s or %s", format, LogFormatJSON, LogFormatText)
	}
}

// NewLogger builds a structured logger. An unparsable level falls back to
// info and any format other than json writes text. Debug loggers record the
// source position.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level, _ := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if strings.EqualFold(cfg.Format, LogFormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	return logger
}

// InitLogger builds a logger with NewLogger and installs it as the slog default.
func InitLogger(cfg LogConfig) *slog.Logger {
	logger := NewLogger(cfg)
	slog.SetDefault(logger)
	return logger
}
