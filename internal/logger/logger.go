// Package logger provides levelled logging for sercha-scan.
//
// Warnings and errors are always printed. Informational messages are
// printed once the level is lowered to info (the serve command does this),
// and debug messages plus section headers only when verbose mode is
// enabled via the --verbose flag, to help users follow the search pipeline.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	verbose bool
	level             = log.WarnLevel
	format            = "text"
	output  io.Writer = os.Stderr
	base              = newLogger()
)

// newLogger builds a logger from the current settings (caller must hold lock).
func newLogger() *log.Logger {
	l := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		Prefix:          "sercha-scan",
		Level:           level,
	})
	switch format {
	case "json":
		l.SetFormatter(log.JSONFormatter)
	case "logfmt":
		l.SetFormatter(log.LogfmtFormatter)
	default:
		l.SetFormatter(log.TextFormatter)
	}
	return l
}

// SetVerbose enables or disables verbose logging.
// Verbose mode lowers the level to debug; disabling it restores warn.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level = log.DebugLevel
	} else {
		level = log.WarnLevel
	}
	base = newLogger()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetLevel sets the minimum level by name ("debug", "info", "warn", "error").
// Unknown names are ignored. Verbose mode always wins.
func SetLevel(name string) {
	parsed, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		return
	}
	level = parsed
	base = newLogger()
}

// SetFormat selects the output format: "text", "logfmt" or "json".
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	base = newLogger()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newLogger()
}

// With returns a logger carrying the given key/value pairs, e.g. a request ID.
func With(keyvals ...any) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(keyvals...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		base.Debug("=== " + name + " ===")
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Errorf(format, args...)
}
