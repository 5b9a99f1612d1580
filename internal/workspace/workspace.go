// Package workspace gives access to the files of a checked out build
// workspace, the build manifest in particular.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultManifestName is the manifest looked for at the workspace root.
const DefaultManifestName = ".jenkins.yml"

// ErrManifestMissing is returned by LoadManifest when the workspace has no
// manifest.
var ErrManifestMissing = errors.New("manifest not found")

// Workspace is the root directory of a build.
type Workspace struct {
	root string
}

// New returns a Workspace rooted at root, which is made absolute.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %q: %w", root, err)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute path of the workspace.
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) String() string {
	return w.root
}

// Child returns the path of name relative to the workspace root.
func (w *Workspace) Child(name string) Path {
	return Path(filepath.Join(w.root, name))
}

// LoadManifest reads the named manifest from the workspace root. If the
// manifest doesn't exist the error wraps ErrManifestMissing and nothing is
// read.
func (w *Workspace) LoadManifest(name string) (string, error) {
	p := w.Child(name)

	exists, err := p.Exists()
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrManifestMissing, p)
	}

	return p.ReadString()
}

// Path is a file path within a workspace.
type Path string

func (p Path) String() string {
	return string(p)
}

// Exists reports whether something exists at the path. Failing to find out
// is an error, not a false.
func (p Path) Exists() (bool, error) {
	_, err := os.Stat(string(p))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: %w", p, err)
	}
}

// ReadString reads the whole file.
func (p Path) ReadString() (string, error) {
	b, err := os.ReadFile(string(p))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}
	return string(b), nil
}
