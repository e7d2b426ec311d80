// Package logging is a small leveled wrapper over the standard logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level orders log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger writes "RFC3339 LEVEL component: message" lines.
// A nil *Logger discards everything.
type Logger struct {
	out       *log.Logger
	level     Level
	component string
	now       func() time.Time
}

// New returns a logger writing to w at the given minimum level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		out:   log.New(w, "", 0),
		level: level,
		now:   time.Now,
	}
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

// With returns a logger sharing the output but tagged with component.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	cp := *l
	cp.component = component
	return &cp
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	component := l.component
	if component == "" {
		component = "voltalert"
	}
	msg := fmt.Sprintf(format, args...)
	l.out.Printf("%s %s %s: %s", l.now().Format(time.RFC3339), level, component, msg)
}
