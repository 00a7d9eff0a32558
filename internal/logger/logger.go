// Package logger is a small structured logging facade over logrus.
package logger

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Ctx is the logging context: key/value pairs attached to a message.
type Ctx map[string]any

// Logger is the interface used throughout the module.
type Logger interface {
	Error(msg string, ctx ...Ctx)
	Warn(msg string, ctx ...Ctx)
	Info(msg string, ctx ...Ctx)
	Debug(msg string, ctx ...Ctx)
	Trace(msg string, ctx ...Ctx)
	AddContext(ctx Ctx) Logger
}

// targetLogger is satisfied by both *logrus.Logger and *logrus.Entry.
type targetLogger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
	Error(args ...any)
	Warn(args ...any)
	Info(args ...any)
	Debug(args ...any)
	Trace(args ...any)
}

// New returns a logger writing text records at the given level to out.
func New(level string, out io.Writer) (Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return newWrapper(l), nil
}

// Wrap adapts an existing logrus logger.
func Wrap(l *logrus.Logger) Logger {
	return newWrapper(l)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return newWrapper(l)
}
