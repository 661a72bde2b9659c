// Package logger wraps logrus with structured fields and trace-ID helpers.
//
// The wrapper is the single logging entry point for the service: remote log
// sinks are attached to it as hooks, and hook failures never propagate to
// callers, so logging stays best-effort everywhere.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config controls level, format and destination of the log output.
type Config struct {
	// Level is one of trace, debug, info, warn, error.
	Level string
	// Format is "json" or "text".
	Format string
	// Output is "stdout" or "stderr".
	Output string
}

// Logger is a logrus logger carrying a set of structured fields.
type Logger struct {
	*logrus.Logger
	fields logrus.Fields
}

// New creates a logger from the given config.
func New(cfg Config) (*Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	switch cfg.Output {
	case "stderr":
		log.SetOutput(os.Stderr)
	default:
		log.SetOutput(os.Stdout)
	}

	return &Logger{Logger: log, fields: logrus.Fields{}}, nil
}

// NewDefault creates an info-level JSON logger tagged with the service name.
func NewDefault(service string) *Logger {
	log, _ := New(Config{Level: "info", Format: "json", Output: "stdout"})
	return log.WithField("service", service)
}

// NewNop creates a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log, fields: logrus.Fields{}}
}

// WithField returns a logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(logrus.Fields{key: value})
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields logrus.Fields) *Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{Logger: l.Logger, fields: merged}
}

// WithError returns a logger with the error recorded as a field.
func (l *Logger) WithError(err error) *Logger {
	return l.WithField(logrus.ErrorKey, err)
}

func (l *Logger) entry() *logrus.Entry {
	if len(l.fields) == 0 {
		return logrus.NewEntry(l.Logger)
	}
	return l.Logger.WithFields(l.fields)
}

// Debug logs a message at debug level.
func (l *Logger) Debug(args ...interface{}) { l.entry().Debug(args...) }

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry().Debugf(format, args...) }

// Info logs a message at info level.
func (l *Logger) Info(args ...interface{}) { l.entry().Info(args...) }

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.entry().Infof(format, args...) }

// Warn logs a message at warn level.
func (l *Logger) Warn(args ...interface{}) { l.entry().Warn(args...) }

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.entry().Warnf(format, args...) }

// Error logs a message at error level.
func (l *Logger) Error(args ...interface{}) { l.entry().Error(args...) }

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry().Errorf(format, args...) }

// Fatal logs a message at fatal level and exits.
func (l *Logger) Fatal(args ...interface{}) { l.entry().Fatal(args...) }

// Fatalf logs a formatted message at fatal level and exits.
func (l *Logger) Fatalf(format string, args ...interface{}) { l.entry().Fatalf(format, args...) }
