package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const FileName = "storyview.log"

// New builds a JSON file logger. The terminal belongs to the viewer, so logs
// never go to stdout or stderr. file "off" returns a no-op logger; an empty
// file logs to <dir>/storyview.log.
func New(dir, file, level string) (*zap.Logger, error) {
	file = strings.TrimSpace(file)
	if strings.EqualFold(file, "off") {
		return zap.NewNop(), nil
	}
	if file == "" {
		if dir == "" {
			return zap.NewNop(), nil
		}
		file = filepath.Join(dir, FileName)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}

	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{file}
	config.ErrorOutputPaths = []string{file}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil
	return config.Build()
}
