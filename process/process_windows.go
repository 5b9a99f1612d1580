//go:build windows

package process

import "os"

// Windows has no process groups or POSIX signals to send, so both interrupt
// and terminate kill the process outright.
func (p *Process) setupProcessGroup() {}

func (p *Process) terminateProcessGroup() error {
	p.logger.Debug("[Process] Killing PID: %d", p.pid)
	return p.command.Process.Kill()
}

func (p *Process) interruptProcessGroup() error {
	return p.terminateProcessGroup()
}

func signaledExitCode(*os.ProcessState) (int, bool) {
	return 0, false
}
