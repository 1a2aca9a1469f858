// Package log is the process-wide leveled logger. The reader core never
// logs on its own; it reports diagnostics through caller-supplied sinks,
// and the callers route them here.
package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the severity of a log message.
type Level uint32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a Level. Unrecognized
// strings report false and fall back to LevelInfo.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

var currentLevel atomic.Uint32

var logger = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level Level) {
	currentLevel.Store(uint32(level))
}

// GetLevel returns the current global logging level.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

func logf(level Level, format string, v ...any) {
	if level < GetLevel() {
		return
	}
	logger.Printf("[%-5s] %s", level, fmt.Sprintf(format, v...))
}

// Debugf logs a formatted debug message if the level is appropriate.
func Debugf(format string, v ...any) { logf(LevelDebug, format, v...) }

// Infof logs a formatted info message if the level is appropriate.
func Infof(format string, v ...any) { logf(LevelInfo, format, v...) }

// Warnf logs a formatted warning message if the level is appropriate.
func Warnf(format string, v ...any) { logf(LevelWarn, format, v...) }

// Errorf logs a formatted error message if the level is appropriate.
func Errorf(format string, v ...any) { logf(LevelError, format, v...) }
