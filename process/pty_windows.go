//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
)

func StartPTY(*exec.Cmd) (*os.File, error) {
	return nil, errors.New("PTY is not supported on this platform")
}
