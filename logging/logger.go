// Package logging is the leveled, printf-style logger shared by the loader,
// the compiler, the inference engine and the CLI.  Output goes through a
// log/slog text handler.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

var levels = []struct {
	level   LogLevel
	names   []string
	slogLvl slog.Level
}{
	{LogLevelDebug, []string{"DEBUG"}, slog.LevelDebug},
	{LogLevelInfo, []string{"INFO"}, slog.LevelInfo},
	{LogLevelWarn, []string{"WARN", "WARNING"}, slog.LevelWarn},
	{LogLevelError, []string{"ERROR"}, slog.LevelError},
	{LogLevelOff, []string{"OFF", "NONE"}, slog.LevelError + 4},
}

func (l LogLevel) String() string {
	for _, e := range levels {
		if e.level == l {
			return e.names[0]
		}
	}
	return "UNKNOWN"
}

// ParseLogLevel accepts level names in any case.  Unknown names yield Info
// and an error.
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, e := range levels {
		for _, n := range e.names {
			if n == name {
				return e.level, nil
			}
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level: %s", s)
}

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DefaultLogger filters by its own level and hands formatted messages to slog.
type DefaultLogger struct {
	mu     sync.RWMutex
	level  LogLevel
	logger *slog.Logger
}

func NewLogger(output io.Writer, level LogLevel) *DefaultLogger {
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &DefaultLogger{level: level, logger: slog.New(handler)}
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *DefaultLogger) enabled(level LogLevel) bool {
	floor := l.GetLevel()
	return floor != LogLevelOff && level >= floor
}

func (l *DefaultLogger) emit(level LogLevel, format string, args []any) {
	if !l.enabled(level) {
		return
	}
	l.logger.Log(context.Background(), levels[level].slogLvl, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debug(format string, args ...any) { l.emit(LogLevelDebug, format, args) }
func (l *DefaultLogger) Info(format string, args ...any)  { l.emit(LogLevelInfo, format, args) }
func (l *DefaultLogger) Warn(format string, args ...any)  { l.emit(LogLevelWarn, format, args) }
func (l *DefaultLogger) Error(format string, args ...any) { l.emit(LogLevelError, format, args) }

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewLogger(os.Stderr, LogLevelInfo)
)

// Default returns the process-wide logger.
func Default() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetDefault replaces the process-wide logger and returns the previous one.
func SetDefault(l Logger) Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	old := globalLogger
	globalLogger = l
	return old
}

func SetLogLevel(level LogLevel) { Default().SetLevel(level) }
func GetLogLevel() LogLevel      { return Default().GetLevel() }

func Debug(format string, args ...any) { Default().Debug(format, args...) }
func Info(format string, args ...any)  { Default().Info(format, args...) }
func Warn(format string, args ...any)  { Default().Warn(format, args...) }
func Error(format string, args ...any) { Default().Error(format, args...) }

// LUATY_LOG_LEVEL sets the starting level; test binaries only log errors.
func init() {
	if v := os.Getenv("LUATY_LOG_LEVEL"); v != "" {
		if level, err := ParseLogLevel(v); err == nil {
			SetLogLevel(level)
		}
	}
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLogLevel(LogLevelError)
	}
}
