package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is stamped on every entry.
const ServiceName = "epdq-gateway"

var log *zap.Logger

// Init builds the global logger for an APP_ENV value. "production" writes
// JSON to stdout, "test" only keeps warnings, anything else is the colored
// development console.
func Init(env string) {
	log = build(env)
}

func build(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.Fields(zap.String("service", ServiceName)))
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the global logger. Before Init it is a development logger.
func L() *zap.Logger {
	if log == nil {
		log = build("")
	}
	return log
}

// Replace swaps the global logger and returns a func restoring the old one.
func Replace(l *zap.Logger) (restore func()) {
	prev := log
	log = l
	return func() { log = prev }
}

// Sync flushes logs.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
