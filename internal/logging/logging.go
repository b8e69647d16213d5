package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogFile = "termcord.log"

var (
	mu           sync.Mutex
	logger       = zap.NewNop()
	level        = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sink         *os.File
	traceEnabled bool
)

// Configure points the shared logger at path. Empty values fall back to the
// default file name. Directories are created automatically when missing.
// Until Configure is called every entry is discarded.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()

	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.MessageKey = "event"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), level)

	closeLocked()
	sink = f
	logger = zap.New(core)
}

// Close flushes and releases the log file. Later entries are discarded.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	_ = logger.Sync()
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
	logger = zap.NewNop()
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// TraceEnabled reports whether Trace entries are currently written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Logger returns the shared zap logger.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Error records err at error level.
func Error(err error) {
	if err == nil {
		return
	}
	Logger().Error("error", zap.Error(err))
}

// Warn records msg at warn level.
func Warn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

// Info records msg at info level.
func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// Trace records a structured debug entry named event when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	Logger().Debug(event, zap.Any("payload", payload))
}
