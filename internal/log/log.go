// Package log provides the process-wide structured logger, backed by logrus.
package log

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across wirecap.
type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	mu     sync.RWMutex
	logger Logger = newDefault()
)

// GetLogger returns the global logger. It is usable before Init.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the global logger.
func SetLogger(l Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

type logrusAdapter struct {
	*logrus.Entry
}

func (l logrusAdapter) WithField(field string, value interface{}) Logger {
	return logrusAdapter{l.Entry.WithField(field, value)}
}

func (l logrusAdapter) WithFields(fields map[string]interface{}) Logger {
	return logrusAdapter{l.Entry.WithFields(fields)}
}

func (l logrusAdapter) WithError(err error) Logger {
	return logrusAdapter{l.Entry.WithError(err)}
}

func (l logrusAdapter) IsDebugEnabled() bool {
	return l.Logger.IsLevelEnabled(logrus.DebugLevel)
}
