package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields type alias for logrus.Fields
type Fields = logrus.Fields

// Log wraps logrus.Logger
type Log struct {
	*logrus.Logger
}

var globalLogger = New()

// New returns a logger writing text to stderr at the LOG_LEVEL level (info by default)
func New() *Log {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return &Log{Logger: logger}
}

// GetLogger returns the process-wide logger
func GetLogger() *Log {
	return globalLogger
}

// Discard returns a logger that drops everything, for tests
func Discard() *Log {
	l := New()
	l.SetOutput(io.Discard)
	return l
}

func parseLevel(s string) logrus.Level {
	if s == "" {
		return logrus.InfoLevel
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(s)); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

// WithComponent tags entries with the subsystem that produced them
func (l *Log) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// Configure sets level, format ("text" or "json") and output. Output is
// "stdout", "stderr" or a file path; files are rotated after maxSizeMB.
func (l *Log) Configure(level, format, output string, maxSizeMB, maxAgeDays int) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s'", level)
	}
	l.SetLevel(lvl)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch format {
	case "json":
		l.SetReportCaller(true)
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: callerPrettyfier,
		})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return fmt.Errorf("invalid log format '%s'", format)
	}

	switch output {
	case "stderr", "":
		l.SetOutput(os.Stderr)
	case "stdout":
		l.SetOutput(os.Stdout)
	default:
		l.SetOutput(&lumberjack.Logger{
			Filename: output,
			MaxSize:  maxSizeMB,
			MaxAge:   maxAgeDays,
			Compress: true,
		})
	}
	return nil
}
