// Package logging adapts the domain logging.Logger port to zerolog.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
)

// Config controls the zerolog-backed Logger.
type Config struct {
	Level  domainlogging.Level
	Pretty bool
	Output io.Writer
}

// ZerologLogger implements domainlogging.Logger over a zerolog.Logger.
type ZerologLogger struct {
	logger zerolog.Logger
}

// New builds a ZerologLogger from cfg. A nil Output defaults to stderr.
func New(cfg Config) *ZerologLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	zl := zerolog.New(out).With().Timestamp().Logger().Level(toZerologLevel(cfg.Level))
	return &ZerologLogger{logger: zl}
}

func toZerologLevel(l domainlogging.Level) zerolog.Level {
	switch l {
	case domainlogging.LevelDebug:
		return zerolog.DebugLevel
	case domainlogging.LevelWarn:
		return zerolog.WarnLevel
	case domainlogging.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func withFields(ev *zerolog.Event, fields []domainlogging.Field) *zerolog.Event {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	return ev
}

// Debug logs at debug level.
func (z *ZerologLogger) Debug(msg string, fields ...domainlogging.Field) {
	withFields(z.logger.Debug(), fields).Msg(msg)
}

// Info logs at info level.
func (z *ZerologLogger) Info(msg string, fields ...domainlogging.Field) {
	withFields(z.logger.Info(), fields).Msg(msg)
}

// Warn logs at warn level.
func (z *ZerologLogger) Warn(msg string, fields ...domainlogging.Field) {
	withFields(z.logger.Warn(), fields).Msg(msg)
}

// Error logs at error level.
func (z *ZerologLogger) Error(msg string, fields ...domainlogging.Field) {
	withFields(z.logger.Error(), fields).Msg(msg)
}

// With returns a ZerologLogger that always includes fields.
func (z *ZerologLogger) With(fields ...domainlogging.Field) domainlogging.Logger {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{logger: ctx.Logger()}
}
