// Package logging backs the glog.Logger contract with log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-logger/glog"
)

// Extra levels around the slog defaults
const (
	LevelTrace = slog.LevelDebug - 4
	LevelFatal = slog.LevelError + 4
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures the handler
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logger writing to opts.Writer (stderr when nil)
func New(opts Options) (glog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}
			switch lvl := a.Value.Any().(slog.Level); lvl {
			case LevelTrace:
				a.Value = slog.StringValue("TRACE")
			case LevelFatal:
				a.Value = slog.StringValue("FATAL")
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		handler = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return FromSlog(slog.New(handler)), nil
}

// FromSlog wraps an existing slog logger
func FromSlog(l *slog.Logger) glog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return &logger{base: l, ctx: context.Background()}
}

type logger struct {
	base *slog.Logger
	ctx  context.Context
}

func (l *logger) Trace(msg string, args ...any) { l.base.Log(l.ctx, LevelTrace, msg, args...) }
func (l *logger) Debug(msg string, args ...any) { l.base.Log(l.ctx, slog.LevelDebug, msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.base.Log(l.ctx, slog.LevelInfo, msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.base.Log(l.ctx, slog.LevelWarn, msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.base.Log(l.ctx, slog.LevelError, msg, args...) }

func (l *logger) Fatal(msg string, args ...any) {
	l.base.Log(l.ctx, LevelFatal, msg, args...)
	os.Exit(1)
}

func (l *logger) WithContext(ctx context.Context) glog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &logger{base: l.base, ctx: ctx}
}
