// Package logging wires slog for mistlens: a tint handler for terminals or
// a JSON handler, wrapped so loggers travel in contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

type Options struct {
	Level  string
	Format string
	// NoColor disables ANSI colors in text output. Setup turns colors off on
	// its own when w is not a terminal.
	NoColor bool
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unsupported log level %q", name)
	}
}

// NewHandler builds the handler Setup installs.
func NewHandler(w io.Writer, opts Options) (slog.Handler, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch opts.Format {
	case "", "text":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor || !isTerminal(w),
		})
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, errors.Errorf("unsupported log format %q", opts.Format)
	}
	return slogctx.NewHandler(handler, nil), nil
}

// Setup installs a logger as the slog default and returns ctx carrying it.
func Setup(ctx context.Context, w io.Writer, opts Options) (context.Context, error) {
	handler, err := NewHandler(w, opts)
	if err != nil {
		return ctx, err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}
