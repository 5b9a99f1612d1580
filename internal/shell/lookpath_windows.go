package shell

import (
	"os/exec"
	"path/filepath"
)

// LookPath resolves an interpreter against a semicolon delimited PATH taken
// from the build environment. PATHEXT handling is left to os/exec.
func LookPath(file, path string) (string, error) {
	if filepath.IsAbs(file) || path == "" {
		return exec.LookPath(file)
	}
	for _, dir := range filepath.SplitList(path) {
		if p, err := exec.LookPath(filepath.Join(dir, file)); err == nil {
			return p, nil
		}
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}
