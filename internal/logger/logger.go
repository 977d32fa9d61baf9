// Package logger builds the server's zap logger and manages log retention.
//
// Logs go to a file under the log directory: server.log normally, or a
// timestamped file per run in debug mode. Warnings and errors are also
// written to stderr. Nothing is ever written to stdout, which belongs to
// the stdio transport.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Dir is the log directory. Created if missing.
	Dir string

	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Debug forces debug level and a per-run timestamped log file.
	Debug bool

	// Console receives warn-level output. Defaults to os.Stderr.
	Console io.Writer

	// Now is used for the debug file name. Defaults to time.Now.
	Now func() time.Time
}

// Logger bundles the zap logger with the file it writes to.
type Logger struct {
	*zap.Logger

	// Path is the log file in use.
	Path string

	file *os.File
}

// New creates a logger writing to a file in opts.Dir, teed with a
// warn-level console core.
func New(opts Options) (*Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	name := "server.log"
	if opts.Debug {
		level = zapcore.DebugLevel
		name = now().Format("20060102_150405") + "_server.log"
	}
	path := filepath.Join(opts.Dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.TimeKey = ""

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(console), zapcore.WarnLevel),
	)

	return &Logger{Logger: zap.New(core), Path: path, file: f}, nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	return l.file.Close()
}

// ParseLevel converts a configured level name to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Prune removes *.log files in dir last modified more than retainDays ago.
// retainDays <= 0 disables pruning. It returns the removed paths.
func Prune(dir string, retainDays int, now time.Time) ([]string, error) {
	if retainDays <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := now.Add(-time.Duration(retainDays) * 24 * time.Hour)
	var removed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			p := filepath.Join(dir, e.Name())
			if err := os.Remove(p); err == nil {
				removed = append(removed, p)
			}
		}
	}
	return removed, nil
}
