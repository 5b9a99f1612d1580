package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jenkinsci/recipe-builder/env"
	"github.com/jenkinsci/recipe-builder/logger"
	"github.com/jenkinsci/recipe-builder/process"
)

// DefaultInterpreter is used when no interpreter is configured.
const DefaultInterpreter = "/bin/sh"

// ErrInterrupted is wrapped by errors from commands that were stopped because
// their context ended.
var ErrInterrupted = errors.New("interrupted")

// Command is a single script line to run through an interpreter.
type Command struct {
	Script string
	Dir    string
	Env    *env.Environment
}

// ShellRunner runs commands as `<interpreter> -c <script>`.
type ShellRunner struct {
	// Interpreter is the shell binary, resolved against the command's PATH.
	Interpreter string

	// Stdout receives the combined output of each command. Defaults to Logger.
	Stdout io.Writer

	// Logger is the build log that prompts are echoed to.
	Logger Logger

	// PTY runs commands attached to a pseudo-terminal.
	PTY bool

	// InterruptSignal is sent to the command's process group on cancellation.
	InterruptSignal process.Signal

	// SignalGracePeriod is how long to wait after InterruptSignal before
	// killing the process group.
	SignalGracePeriod time.Duration

	debug logger.Logger
}

// RunnerOption configures a ShellRunner.
type RunnerOption func(*ShellRunner)

func WithStdout(w io.Writer) RunnerOption {
	return func(r *ShellRunner) { r.Stdout = w }
}

func WithLogger(l Logger) RunnerOption {
	return func(r *ShellRunner) { r.Logger = l }
}

func WithPTY(pty bool) RunnerOption {
	return func(r *ShellRunner) { r.PTY = pty }
}

func WithInterruptSignal(sig process.Signal) RunnerOption {
	return func(r *ShellRunner) { r.InterruptSignal = sig }
}

func WithSignalGracePeriod(d time.Duration) RunnerOption {
	return func(r *ShellRunner) { r.SignalGracePeriod = d }
}

// WithDebugLogger sets the agent logger that process lifecycle messages go to.
func WithDebugLogger(l logger.Logger) RunnerOption {
	return func(r *ShellRunner) { r.debug = l }
}

// NewShellRunner returns a runner for the given interpreter.
func NewShellRunner(interpreter string, opts ...RunnerOption) *ShellRunner {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	r := &ShellRunner{
		Interpreter:       interpreter,
		Logger:            DiscardLogger,
		InterruptSignal:   process.SIGTERM,
		SignalGracePeriod: 10 * time.Second,
		debug:             logger.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run runs cmd to completion. A command that exits non-zero returns its exit
// status and a nil error. An error is returned, with an exit status of -1, if
// the interpreter could not be started or if ctx ended first; the latter
// wraps ErrInterrupted.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (int, error) {
	environ := cmd.Env.Copy()
	if cmd.Dir != "" {
		environ.Set("PWD", cmd.Dir)
	}

	path, _ := environ.Get("PATH")
	interpreter, err := LookPath(r.Interpreter, path)
	if err != nil {
		return -1, fmt.Errorf("finding interpreter: %w", err)
	}

	args := []string{"-c", cmd.Script}
	r.Logger.Promptf("%s", process.FormatCommand(r.Interpreter, args))

	stdout := r.Stdout
	if stdout == nil {
		stdout = r.Logger
	}

	p := process.New(r.debug, process.Config{
		Path:              interpreter,
		Args:              args,
		Env:               environ.ToSlice(),
		Dir:               cmd.Dir,
		Stdout:            stdout,
		Stderr:            stdout,
		PTY:               r.PTY,
		InterruptSignal:   r.InterruptSignal,
		SignalGracePeriod: r.SignalGracePeriod,
	})

	if err := p.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return -1, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return -1, err
	}

	return p.ExitCode(), nil
}
