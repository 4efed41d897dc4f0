// Package logger holds the process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a no-op logger until Init is called.
var Log = zap.NewNop()

// Init builds the global logger. "production" selects JSON output at info
// level; anything else selects the colored development console.
func Init(env string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Log = l
	zap.ReplaceGlobals(l)
	return nil
}

// SetLevel changes the minimum level without rebuilding outputs.
func SetLevel(level zapcore.Level) {
	Log = Log.WithOptions(zap.IncreaseLevel(level))
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
