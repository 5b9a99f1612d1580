package process

import (
	"strings"

	"github.com/buildkite/shellwords"
)

// FormatCommand formats a command and its arguments for human reading, with
// each part quoted the way the platform's shell would need it.
func FormatCommand(command string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellwords.Quote(command))
	for _, a := range args {
		parts = append(parts, shellwords.Quote(a))
	}
	return strings.Join(parts, " ")
}
