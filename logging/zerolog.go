package logging

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// New builds a JSON logger with timestamps writing to w at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func New(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return NewZerologLogger(zerolog.New(w).Level(lvl).With().Timestamp().Logger())
}

// Zerolog exposes the underlying logger for integrations such as hlog.
func (z *ZerologLogger) Zerolog() zerolog.Logger {
	return z.l
}

// Hook attaches a zerolog hook, e.g. one that reads request scoped values from
// the event context.
func (z *ZerologLogger) Hook(h zerolog.Hook) *ZerologLogger {
	return &ZerologLogger{l: z.l.Hook(h)}
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.l.Debug().Ctx(ctx).Fields(args).Msg(msg)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.l.Info().Ctx(ctx).Fields(args).Msg(msg)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.l.Warn().Ctx(ctx).Fields(args).Msg(msg)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.l.Error().Ctx(ctx).Fields(args).Msg(msg)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(args).Logger()}
}

// Nop discards everything.
func Nop() Logger {
	return NewZerologLogger(zerolog.Nop())
}
