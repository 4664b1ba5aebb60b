package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Level is the minimum severity a logger prints.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// Logger interface defines the logging methods
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetOutput(out io.Writer)
	SetErrOutput(out io.Writer)
	SetVerbose(enabled bool)
	SetQuiet(enabled bool)
	IsVerbose() bool
	IsQuiet() bool
}

// ConsoleLogger implements the Logger interface
type ConsoleLogger struct {
	mu     sync.Mutex
	output io.Writer
	errOut io.Writer
	level  Level
	color  bool
}

type style struct {
	icon  string
	plain string
	color string
}

const (
	blueColor   = "\033[34m"
	greenColor  = "\033[32m"
	yellowColor = "\033[33m"
	redColor    = "\033[31m"
	grayColor   = "\033[90m"
	resetColor  = "\033[0m"
)

var (
	debugStyle   = style{"🔍", "DEBUG", grayColor}
	infoStyle    = style{"ℹ️", "INFO", blueColor}
	successStyle = style{"✓", "SUCCESS", greenColor}
	warnStyle    = style{"⚠", "WARN", yellowColor}
	errorStyle   = style{"✗", "ERROR", redColor}
)

var (
	instance Logger
	once     sync.Once
)

// New returns a console logger writing to out and errOut at LevelInfo.
// Colors are used only when out is a terminal.
func New(out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		output: out,
		errOut: errOut,
		level:  LevelInfo,
		color:  isTerminal(out),
	}
}

// GetLogger returns the singleton instance
func GetLogger() Logger {
	once.Do(func() {
		instance = New(os.Stdout, os.Stderr)
	})
	return instance
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetVerbose enables or disables verbose mode globally
func SetVerbose(verbose bool) {
	GetLogger().SetVerbose(verbose)
}

func IsVerbose() bool {
	return GetLogger().IsVerbose()
}

func SetQuiet(quiet bool) {
	GetLogger().SetQuiet(quiet)
}

func IsQuiet() bool {
	return GetLogger().IsQuiet()
}

// Global helper functions for convenience
func Info(format string, args ...any)    { GetLogger().Info(format, args...) }
func Debug(format string, args ...any)   { GetLogger().Debug(format, args...) }
func Success(format string, args ...any) { GetLogger().Success(format, args...) }
func Warn(format string, args ...any)    { GetLogger().Warn(format, args...) }
func Error(format string, args ...any)   { GetLogger().Error(format, args...) }

// -------------------- Implementation --------------------

func (l *ConsoleLogger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = out
	l.color = isTerminal(out)
}

func (l *ConsoleLogger) SetErrOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut = out
}

func (l *ConsoleLogger) SetVerbose(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		l.level = LevelDebug
	} else if l.level == LevelDebug {
		l.level = LevelInfo
	}
}

func (l *ConsoleLogger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level == LevelDebug
}

func (l *ConsoleLogger) SetQuiet(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		l.level = LevelError
	} else if l.level == LevelError {
		l.level = LevelInfo
	}
}

func (l *ConsoleLogger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level == LevelError
}

func (l *ConsoleLogger) log(min Level, toErr bool, st style, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level > min {
		return
	}

	out := l.output
	if toErr {
		out = l.errOut
	}

	prefix := st.plain
	if l.color {
		prefix = st.icon
	}
	if min == LevelDebug {
		prefix = fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05.000"), prefix)
	}

	msg := fmt.Sprintf(format, args...)
	if l.color {
		fmt.Fprintf(out, "%s%s %s%s\n", st.color, prefix, msg, resetColor)
	} else {
		fmt.Fprintf(out, "%s %s\n", prefix, msg)
	}
}

func (l *ConsoleLogger) Debug(format string, args ...any) {
	l.log(LevelDebug, false, debugStyle, format, args...)
}

func (l *ConsoleLogger) Info(format string, args ...any) {
	l.log(LevelInfo, false, infoStyle, format, args...)
}

func (l *ConsoleLogger) Success(format string, args ...any) {
	l.log(LevelInfo, false, successStyle, format, args...)
}

// Warn goes to the error stream so warnings stay visible when stdout is
// redirected.
func (l *ConsoleLogger) Warn(format string, args ...any) {
	l.log(LevelInfo, true, warnStyle, format, args...)
}

func (l *ConsoleLogger) Error(format string, args ...any) {
	l.log(LevelError, true, errorStyle, format, args...)
}
