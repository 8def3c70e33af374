package log

import (
	"fmt"
	"io"
	"os"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/conf"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Fields map[string]interface{}

var globalLogger *logrus.Logger
var ErrorLoggerNotInitialize = fmt.Errorf("Logger not initialized")

func init() {
	_ = InitGlobalLogger(conf.DefaultConfig())
}

func InitGlobalLogger(c *conf.LogConfig) error {
	c.Normalize()
	logger := logrus.New()

	level, err := logrus.ParseLevel(string(c.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch c.Formatter {
	case conf.JSONFormater:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stderr
	if c.FilePath != "" {
		out = &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
		}
	}
	logger.SetOutput(out)

	globalLogger = logger
	return nil
}

func GlobalLogger() *logrus.Logger {
	if globalLogger == nil {
		panic(ErrorLoggerNotInitialize)
	}
	return globalLogger
}

func SetGlobalLogger(logger *logrus.Logger) {
	globalLogger = logger
}

func WithFields(fields Fields) *logrus.Entry {
	return GlobalLogger().WithFields(logrus.Fields(fields))
}

func Trace(args ...interface{}) {
	GlobalLogger().Trace(args...)
}

func Tracef(template string, args ...interface{}) {
	GlobalLogger().Tracef(template, args...)
}

func Debug(args ...interface{}) {
	GlobalLogger().Debug(args...)
}

func Debugf(template string, args ...interface{}) {
	GlobalLogger().Debugf(template, args...)
}

func Info(args ...interface{}) {
	GlobalLogger().Info(args...)
}

func Infof(template string, args ...interface{}) {
	GlobalLogger().Infof(template, args...)
}

func Warn(args ...interface{}) {
	GlobalLogger().Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	GlobalLogger().Warnf(template, args...)
}

func Error(args ...interface{}) {
	GlobalLogger().Error(args...)
}

func Errorf(template string, args ...interface{}) {
	GlobalLogger().Errorf(template, args...)
}

func Fatal(args ...interface{}) {
	GlobalLogger().Fatal(args...)
}

func Fatalf(template string, args ...interface{}) {
	GlobalLogger().Fatalf(template, args...)
}
