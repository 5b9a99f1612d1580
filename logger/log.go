// Package logger provides the leveled logger used by the recipe tool itself,
// as opposed to the build log that step output is streamed into.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/term"
)

const (
	nocolor   = "0"
	red       = "31"
	green     = "38;5;48"
	yellow    = "33"
	gray      = "38;5;251"
	graybold  = "1;38;5;251"
	lightgray = "38;5;243"
	cyan      = "1;36"
)

const DateFormat = "2006-01-02 15:04:05"

var windowsColors bool

type Logger interface {
	Debug(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	Notice(format string, v ...any)
	Warn(format string, v ...any)
	Info(format string, v ...any)

	WithFields(fields ...Field) Logger
	SetLevel(level Level)
	Level() Level
}

// ConsoleLogger is a Logger that formats each message with a Printer.
type ConsoleLogger struct {
	level   Level
	exitFn  func(int)
	fields  Fields
	printer Printer
}

// NewConsoleLogger returns a logger that prints to printer. Fatal calls exitFn
// with a status of 1 after printing.
func NewConsoleLogger(printer Printer, exitFn func(int)) Logger {
	return &ConsoleLogger{
		level:   NOTICE,
		exitFn:  exitFn,
		printer: printer,
	}
}

// WithFields returns a copy of the logger with the provided fields
func (l *ConsoleLogger) WithFields(fields ...Field) Logger {
	clone := *l
	clone.fields = make(Fields, 0, len(l.fields)+len(fields))
	clone.fields.Add(l.fields...)
	clone.fields.Add(fields...)
	return &clone
}

// SetLevel sets the level for the logger
func (l *ConsoleLogger) SetLevel(level Level) {
	l.level = level
}

func (l *ConsoleLogger) Level() Level {
	return l.level
}

func (l *ConsoleLogger) Debug(format string, v ...any) {
	if l.level == DEBUG {
		l.printer.Print(DEBUG, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Error(format string, v ...any) {
	if l.level <= ERROR {
		l.printer.Print(ERROR, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Fatal(format string, v ...any) {
	l.printer.Print(FATAL, fmt.Sprintf(format, v...), l.fields)
	l.exitFn(1)
}

func (l *ConsoleLogger) Notice(format string, v ...any) {
	if l.level <= NOTICE {
		l.printer.Print(NOTICE, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Info(format string, v ...any) {
	if l.level <= INFO {
		l.printer.Print(INFO, fmt.Sprintf(format, v...), l.fields)
	}
}

func (l *ConsoleLogger) Warn(format string, v ...any) {
	if l.level <= WARN {
		l.printer.Print(WARN, fmt.Sprintf(format, v...), l.fields)
	}
}

// Printer formats and writes a single log line.
type Printer interface {
	Print(level Level, msg string, fields Fields)
}

// TextPrinter prints human readable lines, optionally with colors.
type TextPrinter struct {
	Colors bool
	Writer io.Writer

	// IsPrefixFn decides which fields are rendered before the message
	// rather than as key=value pairs after it.
	IsPrefixFn func(Field) bool

	mu sync.Mutex
}

func NewTextPrinter(w io.Writer) *TextPrinter {
	return &TextPrinter{
		Writer: w,
		Colors: ColorsAvailable(),
	}
}

func (l *TextPrinter) Print(level Level, msg string, fields Fields) {
	now := time.Now().Format(DateFormat)

	var line strings.Builder

	if l.Colors {
		levelColor := green
		messageColor := nocolor
		fieldColor := graybold

		switch level {
		case DEBUG:
			levelColor = gray
			messageColor = gray
		case NOTICE:
			levelColor = cyan
		case WARN:
			levelColor = yellow
		case ERROR:
			levelColor = red
		case FATAL:
			levelColor = red
			messageColor = red
		}

		fmt.Fprintf(&line, "\x1b[%sm%s %-6s\x1b[0m", levelColor, now, level)

		for _, field := range fields {
			if l.IsPrefixFn != nil && l.IsPrefixFn(field) {
				fmt.Fprintf(&line, " \x1b[%sm%s\x1b[0m", lightgray, field.String())
			}
		}

		fmt.Fprintf(&line, " \x1b[%sm%s\x1b[0m", messageColor, msg)

		for _, field := range fields {
			if l.IsPrefixFn == nil || !l.IsPrefixFn(field) {
				fmt.Fprintf(&line, " \x1b[%sm%s=\x1b[0m\x1b[%sm%s\x1b[0m", fieldColor, field.Key(), messageColor, field.String())
			}
		}
	} else {
		fmt.Fprintf(&line, "%s %-6s", now, level)

		for _, field := range fields {
			if l.IsPrefixFn != nil && l.IsPrefixFn(field) {
				fmt.Fprintf(&line, " %s", field.String())
			}
		}

		fmt.Fprintf(&line, " %s", msg)

		for _, field := range fields {
			if l.IsPrefixFn == nil || !l.IsPrefixFn(field) {
				fmt.Fprintf(&line, " %s=%s", field.Key(), field.String())
			}
		}
	}

	line.WriteString("\n")

	// Make sure we're only outputting a line one at a time
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.Writer, line.String()) //nolint:errcheck // logger output; error handling would recurse
}

// ColorsAvailable reports whether stdout is a terminal that can render ANSI
// escape sequences.
func ColorsAvailable() bool {
	// Color support for windows is set in init
	if runtime.GOOS == "windows" && !windowsColors {
		return false
	}

	// Colors can only be shown if STDOUT is a terminal
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// JSONPrinter prints one JSON object per line.
type JSONPrinter struct {
	Writer io.Writer

	mu sync.Mutex
}

func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{Writer: w}
}

func (p *JSONPrinter) Print(level Level, msg string, fields Fields) {
	line := make(map[string]string, len(fields)+3)
	line["ts"] = time.Now().Format(time.RFC3339)
	line["level"] = level.String()
	line["msg"] = msg

	for _, field := range fields {
		line[field.Key()] = field.String()
	}

	b, err := json.Marshal(line)
	if err != nil {
		b = fmt.Appendf(nil, `{"level":"ERROR","msg":%q}`, "failed to marshal log line: "+err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.Writer, "%s\n", b) //nolint:errcheck // logger output; error handling would recurse
}

// TestPrinter routes log lines through testing.TB.Log so they show up
// next to the test that produced them.
type TestPrinter struct {
	tb testing.TB
}

func NewTestPrinter(tb testing.TB) *TestPrinter {
	return &TestPrinter{tb: tb}
}

func (p *TestPrinter) Print(level Level, msg string, fields Fields) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %s", level, msg)
	for _, field := range fields {
		fmt.Fprintf(&b, " %s=%s", field.Key(), field.String())
	}
	p.tb.Log(b.String())
}

// Discard drops every message.
var Discard = NewConsoleLogger(NewTextPrinter(io.Discard), func(int) {})
