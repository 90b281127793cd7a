// Package logger is the structured logging facade shared by the xyzplot packages. Every
// method is safe on a nil *Logger, so components can run without one.
package logger

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configure New. Logs go to stderr unless Writer is set, leaving stdout to command
// output.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
	// Service, when set, is attached to every entry as "service".
	Service string
}

// Logger is a zerolog logger carrying the fields of the component that owns it.
type Logger struct {
	base zerolog.Logger
}

// New builds a Logger. Level is case-insensitive and defaults to info.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var output io.Writer = writer
	if opts.HumanReadable {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = console
	}

	ctx := zerolog.New(output).Level(level).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return &Logger{base: ctx.Logger()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// Component tags entries with the emitting subsystem (engine, server, transport, ...).
func (l *Logger) Component(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Str("component", name).Logger()}
}

// WithFields derives a logger with extra fields, added in key order so entries read the
// same from run to run.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	builder := l.base.With()
	for _, key := range keys {
		builder = builder.Interface(key, fields[key])
	}
	return &Logger{base: builder.Logger()}
}

// WithField derives a logger with one extra field.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Interface(key, value).Logger()}
}

func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.base.Info().Msg(msg)
}

func (l *Logger) Debug(msg string) {
	if l == nil {
		return
	}
	l.base.Debug().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	if l == nil {
		return
	}
	l.base.Warn().Msg(msg)
}

// WarnErr logs a recoverable failure with err under "error".
func (l *Logger) WarnErr(err error, msg string) {
	if l == nil {
		return
	}
	l.base.Warn().Err(err).Msg(msg)
}

// Error logs msg at error level; a nil err is omitted.
func (l *Logger) Error(err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
