package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/dealdesk/internal/config"
)

// FileName is the diagnostic log inside .dealdesk/logs.
const FileName = "dealdesk.log"

// Logger writes JSON lines to .dealdesk/logs/dealdesk.log. The TUI owns
// the terminal, so nothing is written to stdout or stderr.
type Logger struct {
	*zap.Logger
	path string
	file *os.File
}

// New creates (or appends to) the log file for the current project directory.
func New(projectDir string, debug bool) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.DealdeskDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	sink := zapcore.AddSync(f)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	return &Logger{Logger: zap.New(core, zap.ErrorOutput(sink)), path: path, file: f}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Path returns the log file location, or "" for Nop loggers.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Zap returns the underlying logger, never nil.
func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Close flushes buffered entries and releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.Logger == nil {
		return nil
	}
	_ = l.Logger.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single informational line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
