package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"preventa/internal/config"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds the process logger: production JSON by default, the colored
// development encoder when the format is console. Unknown levels fall back
// to info.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == FormatConsole {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.InitialFields = map[string]any{"service": "preventa"}

	return zcfg.Build()
}
