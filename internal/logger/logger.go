package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "bakery-be"

var log *zap.Logger

// New builds the service logger. Production writes JSON to stdout at info,
// anything else writes colored console output at debug. A non-empty level
// overrides the default for either.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.InitialFields = map[string]any{"service": serviceName, "env": env}
	return cfg.Build(zap.AddCaller())
}

// Init replaces the global logger. It panics when the level is unknown.
func Init(env, level string) {
	l, err := New(env, level)
	if err != nil {
		panic(err)
	}
	log = l
}

// L returns the global logger, building one from APP_ENV and LOG_LEVEL on
// first use.
func L() *zap.Logger {
	if log == nil {
		Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	}
	return log
}

// Sync flushes logs.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// Phone logs a contact number with its middle digits masked, so delivery
// logs stay traceable without carrying the full number.
func Phone(key, phone string) zap.Field {
	if len(phone) < 7 {
		return zap.String(key, strings.Repeat("*", len(phone)))
	}
	return zap.String(key, phone[:3]+strings.Repeat("*", len(phone)-7)+phone[len(phone)-4:])
}
