package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetDebug switches the shared logger to debug level.
func SetDebug() { log.SetLevel(logrus.DebugLevel) }

func Info(args ...interface{}) { log.Info(args...) }

func Infof(format string, args ...interface{}) { log.Infof(format, args...) }

func Warn(args ...interface{}) { log.Warn(args...) }

func Warnf(format string, args ...interface{}) { log.Warnf(format, args...) }

func Error(args ...interface{}) { log.Error(args...) }

func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }

func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }

func Fatal(args ...interface{}) { log.Fatal(args...) }

func Fatalf(format string, args ...interface{}) { log.Fatalf(format, args...) }

// WithField returns an entry carrying a single structured field.
func WithField(key string, value interface{}) *logrus.Entry { return log.WithField(key, value) }
