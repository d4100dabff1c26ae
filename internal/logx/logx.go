// Package logx defines the logging sink injected into the sensor capture
// core, with a default implementation backed by logrus.
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the sink the core reports INFO/WARNING/ERROR events to. It is
// injected so callers can route acquisition-loop diagnostics into their own
// telemetry rather than being tied to a concrete logging library.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// logrusLogger adapts *logrus.Entry to Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewDefault returns the package's default sink: a logrus logger writing to
// stderr at INFO level.
func NewDefault() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// NewWithFields returns a default logrus sink pre-tagged with fields, used
// by the facade to attach a session id to every log line for a device
// instance.
func NewWithFields(fields map[string]interface{}) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return &logrusLogger{entry: l.WithFields(fields)}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Nop discards every message. Useful in tests.
type Nop struct{}

func (Nop) Debugf(string, ...interface{}) {}
func (Nop) Infof(string, ...interface{})  {}
func (Nop) Warnf(string, ...interface{})  {}
func (Nop) Errorf(string, ...interface{}) {}
