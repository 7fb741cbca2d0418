// Package logging provides the CLI's audit logger. User-facing progress
// goes to stdout/stderr; this logger records the same events with
// structure to ~/.hbpm/log/ so the web UI and `hbpm log` can surface them.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the CLI log file name inside the log directory.
const FileName = "hbpm-cli.log"

// Logger wraps zap.SugaredLogger with convenience construction.
type Logger struct {
	*zap.SugaredLogger
}

// New creates a logger writing JSON lines to logDir/hbpm-cli.log.
// The log directory is created if missing.
func New(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", logDir, err)
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{filepath.Join(logDir, FileName)},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return &Logger{SugaredLogger: logger.Sugar()}, nil
}

// Nop returns a logger that discards everything. Used by tests and as a
// fallback when the log directory cannot be created.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
