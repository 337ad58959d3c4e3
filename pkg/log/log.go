// Package log wraps a zap SugaredLogger behind package-level functions so
// services do not carry a logger dependency through every constructor.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	// Sensible default so tests and early startup can log before Init.
	Init("info", "console")
}

// Init configures the global logger. format is "console" or "json".
func Init(level, format string) {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	var zapConfig zap.Config
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = logLevel
	zapConfig.OutputPaths = []string{"stdout"}

	logger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

func Info(msg string) { sugar.Info(msg) }

func Infof(template string, args ...interface{}) { sugar.Infof(template, args...) }

// Infow logs with key/value context; preferred for pipeline stages.
func Infow(msg string, keysAndValues ...interface{}) { sugar.Infow(msg, keysAndValues...) }

func Warnf(template string, args ...interface{}) { sugar.Warnf(template, args...) }

func Errorf(template string, args ...interface{}) { sugar.Errorf(template, args...) }

func Error(msg string, err error) { sugar.Errorw(msg, "error", err) }

// Fatal logs the message with the error and exits.
func Fatal(msg string, err error) { sugar.Fatalw(msg, "error", err) }

func Fatalf(template string, args ...interface{}) { sugar.Fatalf(template, args...) }

// Sync flushes buffered log entries; call before process exit.
func Sync() { _ = sugar.Sync() }
