package logger

import (
	"fmt"
	"strings"
	"sync"
)

// Buffer is a Logger implementation intended for testing;
// messages are stored internally, with any fields appended as key=value.
type Buffer struct {
	mu       *sync.Mutex
	messages *[]string
	fields   Fields
}

// NewBuffer creates a new Buffer with an empty (non-nil) message list, so an
// empty []string can be asserted when nothing was logged.
func NewBuffer() *Buffer {
	messages := make([]string, 0)
	return &Buffer{
		mu:       &sync.Mutex{},
		messages: &messages,
	}
}

// Messages returns a copy of everything logged so far, including messages
// logged through loggers derived with WithFields.
func (b *Buffer) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), (*b.messages)...)
}

func (b *Buffer) record(level, format string, v ...any) {
	var sb strings.Builder
	sb.WriteString("[" + level + "] ")
	fmt.Fprintf(&sb, format, v...)
	for _, f := range b.fields {
		fmt.Fprintf(&sb, " %s=%s", f.Key(), f.String())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	*b.messages = append(*b.messages, sb.String())
}

func (b *Buffer) Debug(format string, v ...any)  { b.record("debug", format, v...) }
func (b *Buffer) Error(format string, v ...any)  { b.record("error", format, v...) }
func (b *Buffer) Fatal(format string, v ...any)  { b.record("fatal", format, v...) }
func (b *Buffer) Notice(format string, v ...any) { b.record("notice", format, v...) }
func (b *Buffer) Warn(format string, v ...any)   { b.record("warn", format, v...) }
func (b *Buffer) Info(format string, v ...any)   { b.record("info", format, v...) }

func (b *Buffer) WithFields(fields ...Field) Logger {
	clone := &Buffer{mu: b.mu, messages: b.messages}
	clone.fields.Add(b.fields...)
	clone.fields.Add(fields...)
	return clone
}

func (b *Buffer) SetLevel(Level) {}

func (b *Buffer) Level() Level {
	return DEBUG
}
