package osutil

import "os"

// FileExists reports whether filename can be statted. Any error counts as
// the file not being there.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
