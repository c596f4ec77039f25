package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	// Format is "json" (default) or "console"
	Format string
	Output io.Writer
}

// Logger writes structured entries. Request-scoped fields travel on the
// context as a zerolog child logger, so handlers deep in a call see the
// method and wallet an interceptor attached.
type Logger struct {
	base zerolog.Logger
}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	return &Logger{
		base: zerolog.New(output).
			Level(opts.Level).
			With().
			Timestamp().
			Str("service", opts.ServiceName).
			Logger(),
	}
}

// Nop discards everything
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// ParseLevel maps a configured level name to a zerolog level; unknown or
// empty names mean info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// entry returns the logger attached to ctx, or the base logger
func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if attached := zerolog.Ctx(ctx); attached.GetLevel() != zerolog.Disabled {
			return attached
		}
	}
	return &l.base
}

// WithFields returns a context whose entries carry fields on top of the ones
// already attached.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	child := l.entry(ctx).With().Fields(fields).Logger()
	return child.WithContext(ctx)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.WithFields(ctx, map[string]any{key: value})
}

// WithAddress tags entries with the connected wallet address
func (l *Logger) WithAddress(ctx context.Context, address string) context.Context {
	return l.WithField(ctx, "wallet_address", address)
}

// WithMethod tags entries with the gRPC method being served
func (l *Logger) WithMethod(ctx context.Context, method string) context.Context {
	return l.WithField(ctx, "method", method)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

// Warn logs a recoverable problem; err may be nil
func (l *Logger) Warn(ctx context.Context, msg string, err error) {
	l.entry(ctx).Warn().Err(err).Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	l.entry(ctx).Error().Err(err).Msg(msg)
}
