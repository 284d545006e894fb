// Package logging provides the leveled logging API used throughout
// sharebox-fuse. The level-gating API shape is kept intentionally small
// (error/warning/basic/debug), but the actual sink is logrus, so that
// call sites can attach structured fields (path, op, repo_root) instead
// of interpolating them into the message.
package logging

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarning
	LogLevelBasic
	LogLevelDebug
)

var (
	level  = LogLevelBasic
	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	applyLevel(l, level)
	return l
}

func applyLevel(l *logrus.Logger, lvl LogLevel) {
	switch lvl {
	case LogLevelError:
		l.SetLevel(logrus.ErrorLevel)
	case LogLevelWarning:
		l.SetLevel(logrus.WarnLevel)
	case LogLevelBasic:
		l.SetLevel(logrus.InfoLevel)
	case LogLevelDebug:
		l.SetLevel(logrus.DebugLevel)
	}
}

func SetLevel(l LogLevel) {
	level = l
	applyLevel(logger, l)
}

func GetLevel() LogLevel {
	return level
}

func FromString(s string) LogLevel {
	if numericLogLevel, err := strconv.Atoi(s); err == nil {
		return boundedLogLevel(numericLogLevel)
	}
	switch strings.ToLower(s) {
	case "error":
		return LogLevelError
	case "warning":
		return LogLevelWarning
	case "basic":
		return LogLevelBasic
	case "debug":
		return LogLevelDebug
	}
	return LogLevelBasic
}

func boundedLogLevel(numericLevel int) LogLevel {
	if numericLevel < 0 {
		return LogLevelError
	}
	if numericLevel > 3 {
		return LogLevelDebug
	}
	return LogLevel(numericLevel)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Warningf(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Basicf(format string, args ...any) {
	logger.Infof(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	logger.Fatalf(format, args...)
}

// WithFields returns a logrus entry pre-populated with the given fields,
// for call sites inside the dispatcher that want to correlate a log line
// with the path and operation it came from (e.g. op=annex_get path=/repo/files/foo.bin).
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}
