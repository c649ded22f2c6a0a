// Package logging builds the zap.Logger every binary entry point uses.
// An LSP server's stdout/stdin carry the wire protocol, so diagnostics
// must never touch them; output goes to a rotated log file instead,
// following the same zap.Config-building shape the teacher's cmd/nerd
// uses for its own CLI logger, with gopkg.in/natefinch/lumberjack.v2
// swapped in as the file sink's rotation policy.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger; Path defaults to a per-user log
// directory when empty.
type Options struct {
	Path       string
	Verbose    bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a logger writing JSON-encoded entries to a rotated file.
func New(opts Options) (*zap.Logger, error) {
	path := opts.Path
	if path == "" {
		p, err := defaultLogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("logging: create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    nonZero(opts.MaxSizeMB, 20),
		MaxBackups: nonZero(opts.MaxBackups, 5),
		MaxAge:     nonZero(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(rotator),
		level,
	)

	return zap.New(core, zap.AddCaller()), nil
}

func nonZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultLogPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("logging: resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "cargotom-ls", "logs", "cargotom-ls.log"), nil
}
