//go:build !windows

package process

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// StartPTY starts c attached to a new pseudo-terminal and returns the
// terminal's master side.
func StartPTY(c *exec.Cmd) (*os.File, error) {
	return pty.Start(c)
}
