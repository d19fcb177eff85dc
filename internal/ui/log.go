package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ANSI escape table. Kept in one place so the rest of the code only ever
// speaks in levels.
const (
	ansiReset  = "\033[0m"
	ansiCyan   = "\033[36m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
)

// Logger prints leveled, colored lines to the terminal and mirrors them,
// uncolored, to an optional log file. It is the only output path in the
// program so the log file always matches what the user saw.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	file   *os.File
	NoTint bool // disable ANSI colors (tests, dumb terminals)
}

func NewLogger(out io.Writer) *Logger {
	return &Logger{out: out}
}

// MirrorTo opens path for appending and mirrors every subsequent line to it.
func (l *Logger) MirrorTo(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.file = f
	l.mu.Unlock()
	return nil
}

// Close releases the mirror file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Logger) Info(format string, args ...any) { l.emit("INFO", ansiCyan, format, args...) }
func (l *Logger) Warn(format string, args ...any) { l.emit("WARN", ansiYellow, format, args...) }
func (l *Logger) Err(format string, args ...any)  { l.emit("ERR", ansiRed, format, args...) }
func (l *Logger) Done(format string, args ...any) { l.emit("DONE", ansiGreen, format, args...) }

func (l *Logger) emit(level, tint, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.NoTint {
		fmt.Fprintf(l.out, "[%s] %s\n", level, msg)
	} else {
		fmt.Fprintf(l.out, "%s[%s]%s %s\n", tint, level, ansiReset, msg)
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "[%s] %s\n", level, msg)
	}
}
