// Package logger builds the file-backed zap logger. The terminal belongs to
// the TUI, so nothing is written to stdout or stderr.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"voicewriter-go/internal/config"
)

// New returns a JSON logger writing to a rotated file at cfg.Path.
// An empty path yields a no-op logger.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Path == "" {
		return zap.NewNop(), nil
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		level,
	)
	return zap.New(core, zap.AddCaller()), nil
}

func parseLevel(l config.LogLevel) (zapcore.Level, error) {
	switch l {
	case config.LogDebug:
		return zap.DebugLevel, nil
	case config.LogInfo, "":
		return zap.InfoLevel, nil
	case config.LogWarn:
		return zap.WarnLevel, nil
	case config.LogError:
		return zap.ErrorLevel, nil
	}
	return zap.InfoLevel, fmt.Errorf("logger: unknown level %q", l)
}
