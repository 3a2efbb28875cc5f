// Package debug is the process-wide debug log. It is off unless CCLIVE_DEBUG=1
// or Init is called with a path.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvVar enables debug logging when set to "1".
const EnvVar = "CCLIVE_DEBUG"

var (
	logger = zap.NewNop()
	mu     sync.RWMutex
)

func init() {
	if os.Getenv(EnvVar) == "1" {
		_ = Init("")
	}
}

// DefaultPath returns ~/.config/cclive/debug.log.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cclive", "debug.log"), nil
}

// Init directs the debug log to path, or to DefaultPath when path is empty.
func Init(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("debug log path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	logger = l
	mu.Unlock()

	l.Info("=== cclive started ===")
	return nil
}

// SetLogger replaces the debug logger. A nil logger disables logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the current logger for structured fields.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Log writes a message to the debug log if debugging is enabled.
func Log(format string, args ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger().Sync()
}
