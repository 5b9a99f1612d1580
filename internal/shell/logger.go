package shell

import (
	"fmt"
	"html"
	"io"
	"runtime"
	"testing"
)

// Logger is the build log that step output and annotations are written to.
type Logger interface {
	io.Writer

	// Printf prints a line of output
	Printf(format string, v ...any)

	// Headerf prints a heading that visually starts a new section of the log
	Headerf(format string, v ...any)

	// Commentf prints a comment line, e.g `# my comment goes here`
	Commentf(format string, v ...any)

	// Errorf shows a formatted error
	Errorf(format string, v ...any)

	// Warningf shows a formatted warning
	Warningf(format string, v ...any)

	// Promptf prints a shell prompt
	Promptf(format string, v ...any)
}

// HeaderStyle selects how Headerf renders a heading.
type HeaderStyle int

const (
	// HeaderText renders "~~~ heading", which log viewers fold into sections.
	HeaderText HeaderStyle = iota

	// HeaderHTML renders "<h2>heading</h2>" with the heading HTML escaped.
	HeaderHTML
)

// ParseHeaderStyle parses "text" or "html".
func ParseHeaderStyle(s string) (HeaderStyle, error) {
	switch s {
	case "", "text":
		return HeaderText, nil
	case "html":
		return HeaderHTML, nil
	default:
		return 0, fmt.Errorf("invalid header style %q, must be one of text or html", s)
	}
}

func (s HeaderStyle) String() string {
	if s == HeaderHTML {
		return "html"
	}
	return "text"
}

// DiscardLogger discards all log messages
var DiscardLogger = &WriterLogger{
	Writer: io.Discard,
}

// WriterLogger provides a logger that writes to an io.Writer
type WriterLogger struct {
	Writer      io.Writer
	Ansi        bool
	HeaderStyle HeaderStyle
}

func NewWriterLogger(writer io.Writer, ansi bool, style HeaderStyle) *WriterLogger {
	return &WriterLogger{
		Writer:      writer,
		Ansi:        ansi,
		HeaderStyle: style,
	}
}

// Write passes process output through unchanged.
func (wl *WriterLogger) Write(b []byte) (int, error) {
	return wl.Writer.Write(b)
}

func (wl *WriterLogger) Printf(format string, v ...any) {
	fmt.Fprintf(wl.Writer, format+"\n", v...) //nolint:errcheck // logger output; error handling would recurse
}

func (wl *WriterLogger) Headerf(format string, v ...any) {
	heading := fmt.Sprintf(format, v...)
	if wl.HeaderStyle == HeaderHTML {
		fmt.Fprintf(wl.Writer, "<h2>%s</h2>\n", html.EscapeString(heading)) //nolint:errcheck // logger output
		return
	}
	fmt.Fprintf(wl.Writer, "~~~ %s\n", heading) //nolint:errcheck // logger output
}

func (wl *WriterLogger) Commentf(format string, v ...any) {
	if wl.Ansi {
		wl.Printf(ansiColor("# "+format, "90"), v...)
	} else {
		wl.Printf("# "+format, v...)
	}
}

func (wl *WriterLogger) Errorf(format string, v ...any) {
	if wl.Ansi {
		wl.Printf(ansiColor("🚨 Error: "+format, "31"), v...)
	} else {
		wl.Printf("🚨 Error: "+format, v...)
	}
}

func (wl *WriterLogger) Warningf(format string, v ...any) {
	if wl.Ansi {
		wl.Printf(ansiColor("⚠️ Warning: "+format, "33"), v...)
	} else {
		wl.Printf("⚠️ Warning: "+format, v...)
	}
}

func (wl *WriterLogger) Promptf(format string, v ...any) {
	prompt := "$"
	if runtime.GOOS == "windows" {
		prompt = ">"
	}
	if wl.Ansi {
		wl.Printf(ansiColor(prompt, "90")+" "+format, v...)
	} else {
		wl.Printf(prompt+" "+format, v...)
	}
}

func ansiColor(s, attributes string) string {
	return fmt.Sprintf("\033[%sm%s\033[0m", attributes, s)
}

// TestingLogger sends the build log to the test log.
type TestingLogger struct {
	testing.TB
}

func (tl TestingLogger) Write(b []byte) (int, error) {
	tl.Logf("%s", b)
	return len(b), nil
}

func (tl TestingLogger) Printf(format string, v ...any) {
	tl.Logf(format, v...)
}

func (tl TestingLogger) Headerf(format string, v ...any) {
	tl.Logf("~~~ "+format, v...)
}

func (tl TestingLogger) Commentf(format string, v ...any) {
	tl.Logf("# "+format, v...)
}

func (tl TestingLogger) Errorf(format string, v ...any) {
	tl.Logf("🚨 Error: "+format, v...)
}

func (tl TestingLogger) Warningf(format string, v ...any) {
	tl.Logf("⚠️ Warning: "+format, v...)
}

func (tl TestingLogger) Promptf(format string, v ...any) {
	tl.Logf("$ "+format, v...)
}
