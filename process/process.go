// Package process runs a single subprocess to completion, wiring its output
// to writers and translating context cancellation into signals.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/jenkinsci/recipe-builder/logger"
)

// ErrAlreadyStarted is returned when Run is called more than once.
var ErrAlreadyStarted = errors.New("process already started")

// Config configures a Process.
type Config struct {
	Path string
	Args []string
	Env  []string
	Dir  string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Run the process attached to a pseudo-terminal. Only Stdout is used.
	PTY bool

	// The signal sent to the process group when the context passed to Run is
	// cancelled. Defaults to SIGTERM.
	InterruptSignal Signal

	// How long to wait after InterruptSignal before sending SIGKILL.
	SignalGracePeriod time.Duration
}

// Process is a single execution of a command.
type Process struct {
	conf   Config
	logger logger.Logger

	mu      sync.Mutex
	command *exec.Cmd
	pid     int
	state   *os.ProcessState

	started chan struct{}
}

// New returns a Process that is ready to Run.
func New(l logger.Logger, c Config) *Process {
	if c.Stdout == nil {
		c.Stdout = io.Discard
	}
	if c.Stderr == nil {
		c.Stderr = io.Discard
	}
	return &Process{
		conf:    c,
		logger:  l,
		started: make(chan struct{}),
	}
}

// Run starts the process and blocks until it has exited.
//
// The returned error is non-nil only if the process could not be started, or
// if ctx was done before or while it ran (in which case the error wraps
// ctx.Err()). A non-zero exit is not an error here; see ExitCode.
func (p *Process) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("not starting %q: %w", p.conf.Path, err)
	}

	p.mu.Lock()
	if p.command != nil {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.command = exec.Command(p.conf.Path, p.conf.Args...)
	p.command.Env = p.conf.Env
	p.command.Dir = p.conf.Dir
	p.setupProcessGroup()
	p.mu.Unlock()

	var copying sync.WaitGroup

	if p.conf.PTY {
		tty, err := StartPTY(p.command)
		if err != nil {
			return fmt.Errorf("starting %q in a PTY: %w", p.conf.Path, err)
		}

		copying.Add(1)
		go func() {
			defer copying.Done()
			defer tty.Close() //nolint:errcheck // the process is gone either way

			// Reading from the PTY master returns EIO once the child side has
			// been closed, which just means the process has finished.
			_, err := io.Copy(p.conf.Stdout, tty)
			if pathErr := new(os.PathError); errors.As(err, &pathErr) && errors.Is(pathErr.Err, syscall.EIO) {
				err = nil
			}
			if err != nil {
				p.logger.Error("[Process] PTY output copy failed: %v", err)
			}
		}()
	} else {
		p.command.Stdin = p.conf.Stdin
		p.command.Stdout = p.conf.Stdout
		p.command.Stderr = p.conf.Stderr

		if err := p.command.Start(); err != nil {
			return fmt.Errorf("starting %q: %w", p.conf.Path, err)
		}
	}

	p.mu.Lock()
	p.pid = p.command.Process.Pid
	p.mu.Unlock()
	close(p.started)

	p.logger.Debug("[Process] Process is running with PID: %d", p.pid)

	exited := make(chan struct{})
	go p.watchContext(ctx, exited)

	waitErr := p.command.Wait()
	close(exited)
	copying.Wait()

	p.mu.Lock()
	p.state = p.command.ProcessState
	p.mu.Unlock()

	if waitErr != nil && p.state == nil {
		return fmt.Errorf("waiting for %q: %w", p.conf.Path, waitErr)
	}

	p.logger.Debug("[Process] Process with PID: %d finished with exit status: %d", p.pid, p.ExitCode())

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("process %d was interrupted: %w", p.pid, err)
	}
	return nil
}

// watchContext interrupts the process when ctx is done, and kills it if it
// is still running after the grace period.
func (p *Process) watchContext(ctx context.Context, exited <-chan struct{}) {
	select {
	case <-exited:
		return
	case <-ctx.Done():
	}

	p.logger.Debug("[Process] Context done (%v), interrupting PID: %d", ctx.Err(), p.pid)
	if err := p.Interrupt(); err != nil {
		p.logger.Error("[Process] Failed to interrupt PID %d: %v", p.pid, err)
	}

	timer := time.NewTimer(p.conf.SignalGracePeriod)
	defer timer.Stop()

	select {
	case <-exited:
	case <-timer.C:
		p.logger.Debug("[Process] PID %d still running after %v, terminating", p.pid, p.conf.SignalGracePeriod)
		if err := p.Terminate(); err != nil {
			p.logger.Error("[Process] Failed to terminate PID %d: %v", p.pid, err)
		}
	}
}

// Started returns a channel that is closed once the process is running.
func (p *Process) Started() <-chan struct{} { return p.started }

// Interrupt sends the interrupt signal to the process group. It is a no-op
// if the process isn't running.
func (p *Process) Interrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.command == nil || p.command.Process == nil || p.state != nil {
		return nil
	}
	return p.interruptProcessGroup()
}

// Terminate kills the process group. It is a no-op if the process isn't
// running.
func (p *Process) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.command == nil || p.command.Process == nil || p.state != nil {
		return nil
	}
	return p.terminateProcessGroup()
}

// ExitCode returns the exit status of a finished process. A process killed by
// a signal reports 128+signal, like a POSIX shell does. It returns -1 if the
// process hasn't finished.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return -1
	}
	if code, ok := signaledExitCode(p.state); ok {
		return code
	}
	return p.state.ExitCode()
}

// WaitStatus returns the raw wait status of a finished process. ok is false
// if the process hasn't finished.
func (p *Process) WaitStatus() (status syscall.WaitStatus, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return status, false
	}
	status, ok = p.state.Sys().(syscall.WaitStatus)
	return status, ok
}
