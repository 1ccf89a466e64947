package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger wraps the logrus logger with additional functionality
type Logger struct {
	log   *logrus.Logger
	hooks []*sentrylogrus.Hook
}

// Options configure Setup
type Options struct {
	SentryDSN   string
	Environment string
	Release     string
	Output      io.Writer
}

// New creates a new Logger instance
func New(log *logrus.Logger) *Logger {
	return &Logger{
		log: log,
	}
}

// Setup builds a JSON logrus logger and, when a DSN is given, forwards
// error level entries to Sentry
func Setup(opts Options) (*Logger, error) {
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{})
	if opts.Output != nil {
		base.SetOutput(opts.Output)
	}

	l := New(base)
	if opts.SentryDSN == "" {
		return l, nil
	}

	clientOptions := sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Environment,
		Release:     opts.Release,
	}
	if err := sentry.Init(clientOptions); err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	levels := []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
	hook, err := sentrylogrus.New(levels, clientOptions)
	if err != nil {
		base.WithError(err).Error("Failed to initialize Sentry hook")
		return l, nil
	}

	base.AddHook(hook)
	l.hooks = append(l.hooks, hook)
	base.Info("Sentry integration initialized successfully")

	return l, nil
}

// Flush waits for buffered Sentry events to be delivered
func (l *Logger) Flush(timeout time.Duration) {
	for _, hook := range l.hooks {
		hook.Flush(timeout)
	}
	sentry.Flush(timeout)
}

// Logrus exposes the underlying logger for middleware
func (l *Logger) Logrus() *logrus.Logger {
	return l.log
}

// SecureLog logs errors without sensitive data that might expose code or credentials
func (l *Logger) SecureLog(err error, message string, route string) {
	l.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"route":      route,
		"error_msg":  err.Error(),
	}).Error(message)
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.log.WithField(key, value)
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}

// Info logs an info message
func (l *Logger) Info(args ...any) {
	l.log.Info(args...)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

// Error logs an error message
func (l *Logger) Error(args ...any) {
	l.log.Error(args...)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(args ...any) {
	l.log.Debug(args...)
}

// Warn logs a warning message
func (l *Logger) Warn(args ...any) {
	l.log.Warn(args...)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}
