package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger with the specified level and format. When
// file is non-empty all output is written there instead of stderr, which keeps
// the terminal clean while the dashboard owns it.
func NewLogger(level, format, file string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var config zap.Config
	switch format {
	case "json":
		config = zap.NewProductionConfig()
	case "console", "":
		config = zap.NewDevelopmentConfig()
		if file == "" {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	config.Level = zap.NewAtomicLevelAt(zapLevel)
	if file != "" {
		config.OutputPaths = []string{file}
		config.ErrorOutputPaths = []string{file}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
