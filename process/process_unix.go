//go:build !windows

package process

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func (p *Process) setupProcessGroup() {
	// A PTY puts the child in its own session, which already makes it a
	// process group leader.
	if !p.conf.PTY {
		p.command.SysProcAttr = &syscall.SysProcAttr{
			Setpgid: true,
			Pgid:    0,
		}
	}
}

func (p *Process) terminateProcessGroup() error {
	p.logger.Debug("[Process] Sending signal SIGKILL to PGID: %d", p.pid)
	return unix.Kill(-p.pid, unix.SIGKILL)
}

func (p *Process) interruptProcessGroup() error {
	sig := p.conf.InterruptSignal
	if sig == 0 {
		sig = SIGTERM
	}

	p.logger.Debug("[Process] Sending signal %s to PGID: %d", sig, p.pid)
	return unix.Kill(-p.pid, unix.Signal(sig))
}

func signaledExitCode(state *os.ProcessState) (int, bool) {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return 0, false
	}
	return 128 + int(status.Signal()), true
}
