package logging

import (
	"io"
	"log"
	"strings"
)

// Logger is injected into the sampler and the CLI.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel is case-insensitive and falls back to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
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

// Leveled writes messages at or above its level through a stdlib logger.
type Leveled struct {
	level Level
	out   *log.Logger
}

func New(w io.Writer, level string) *Leveled {
	return &Leveled{
		level: ParseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

func (l *Leveled) Level() Level { return l.level }

func (l *Leveled) logf(level Level, prefix, format string, v ...any) {
	if level >= l.level {
		l.out.Printf(prefix+format, v...)
	}
}

func (l *Leveled) Debugf(format string, v ...any) { l.logf(LevelDebug, "[DEBUG] ", format, v...) }
func (l *Leveled) Infof(format string, v ...any)  { l.logf(LevelInfo, "[INFO] ", format, v...) }
func (l *Leveled) Warnf(format string, v ...any)  { l.logf(LevelWarn, "[WARN] ", format, v...) }
func (l *Leveled) Errorf(format string, v ...any) { l.logf(LevelError, "[ERROR] ", format, v...) }

// Nop discards everything.
type Nop struct{}

func (Nop) Debugf(format string, v ...any) {}
func (Nop) Infof(format string, v ...any)  {}
func (Nop) Warnf(format string, v ...any)  {}
func (Nop) Errorf(format string, v ...any) {}

// Multi fans out to several loggers.
type Multi []Logger

func (m Multi) Debugf(format string, v ...any) {
	for _, l := range m {
		l.Debugf(format, v...)
	}
}

func (m Multi) Infof(format string, v ...any) {
	for _, l := range m {
		l.Infof(format, v...)
	}
}

func (m Multi) Warnf(format string, v ...any) {
	for _, l := range m {
		l.Warnf(format, v...)
	}
}

func (m Multi) Errorf(format string, v ...any) {
	for _, l := range m {
		l.Errorf(format, v...)
	}
}
