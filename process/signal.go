package process

import (
	"fmt"
	"strings"
	"syscall"
)

// Signal is a signal that can be sent to a process group on cancellation.
type Signal syscall.Signal

const (
	SIGHUP  = Signal(syscall.SIGHUP)
	SIGINT  = Signal(syscall.SIGINT)
	SIGQUIT = Signal(syscall.SIGQUIT)
	SIGTERM = Signal(syscall.SIGTERM)
	SIGKILL = Signal(syscall.SIGKILL)
)

var signalNames = map[Signal]string{
	SIGHUP:  "SIGHUP",
	SIGINT:  "SIGINT",
	SIGQUIT: "SIGQUIT",
	SIGTERM: "SIGTERM",
	SIGKILL: "SIGKILL",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Signal(%d)", int(s))
}

// ParseSignal parses a signal name such as "SIGTERM", "term" or "INT".
func ParseSignal(name string) (Signal, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(want, "SIG") {
		want = "SIG" + want
	}
	for sig, n := range signalNames {
		if n == want {
			return sig, nil
		}
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}
