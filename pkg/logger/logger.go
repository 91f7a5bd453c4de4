package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New builds the application logger: readable text on stdout, JSON in
// logs/info.log, and a second JSON stream of errors only in logs/error.log.
func New(level string) (*slog.Logger, error) {
	minLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, err
	}

	infoFile, err := openLogFile("info.log")
	if err != nil {
		return nil, err
	}
	errorFile, err := openLogFile("error.log")
	if err != nil {
		return nil, err
	}

	fanout := &fanoutHandler{
		sinks: []sink{
			{handler: slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: minLevel}), min: minLevel},
			{handler: slog.NewJSONHandler(infoFile, &slog.HandlerOptions{Level: minLevel}), min: minLevel},
			{handler: slog.NewJSONHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError}), min: slog.LevelError},
		},
		min: minLevel,
	}

	return slog.New(fanout), nil
}

func openLogFile(name string) (*os.File, error) {
	return os.OpenFile(filepath.Join("logs", name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}

type sink struct {
	handler slog.Handler
	min     slog.Level
}

// fanoutHandler writes each record to every sink whose threshold it meets.
type fanoutHandler struct {
	sinks []sink
	min   slog.Level
}

func (h *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, s := range h.sinks {
		if r.Level < s.min {
			continue
		}
		if err := s.handler.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]sink, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = sink{handler: s.handler.WithAttrs(attrs), min: s.min}
	}
	return &fanoutHandler{sinks: sinks, min: h.min}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	sinks := make([]sink, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = sink{handler: s.handler.WithGroup(name), min: s.min}
	}
	return &fanoutHandler{sinks: sinks, min: h.min}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}
