package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger writing to stdout. APP_ENV=dev
// switches to the console writer. Every line carries the component field.
func NewZerologLogger(component string) Logger {
	var out io.Writer = os.Stdout
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewZerologLoggerWithWriter(component, out, os.Getenv("LOG_LEVEL"))
}

// NewZerologLoggerWithWriter writes JSON lines to w at the given level name.
// Unknown level names fall back to info.
func NewZerologLoggerWithWriter(component string, w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
