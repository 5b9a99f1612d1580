package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/buildkite/roko"
	"github.com/gofrs/flock"
	"github.com/jenkinsci/recipe-builder/logger"
)

// LockRetryInterval is how long Lock waits between attempts.
var LockRetryInterval = time.Second

// Unlocker releases a workspace lock.
type Unlocker interface {
	Unlock() error
}

// LockPath returns the lock file used for the workspace. It lives in the
// temp dir so that locking never touches the checkout.
func (w *Workspace) LockPath() string {
	sum := sha256.Sum256([]byte(w.root))
	return filepath.Join(os.TempDir(), "recipe-"+hex.EncodeToString(sum[:8])+".lock")
}

// Warner is told when Lock has to wait for another process.
type Warner interface {
	Warningf(format string, v ...any)
}

// Lock takes a cross-process lock on the workspace, waiting until it is free
// or ctx is done. If it has to wait, console is warned once; it may be nil.
func (w *Workspace) Lock(ctx context.Context, l logger.Logger, console Warner) (Unlocker, error) {
	path := w.LockPath()
	lock := flock.New(path)

	l = l.WithFields(logger.StringField("lock", path))

	warned := false

	err := roko.NewRetrier(
		roko.TryForever(),
		roko.WithStrategy(roko.Constant(LockRetryInterval)),
	).DoWithContext(ctx, func(r *roko.Retrier) error {
		if err := ctx.Err(); err != nil {
			r.Break()
			return err
		}

		locked, err := lock.TryLock()
		if err != nil {
			r.Break()
			return fmt.Errorf("locking workspace %s: %w", w.root, err)
		}
		if !locked {
			if !warned && console != nil {
				console.Warningf("Waiting for another build in %s to finish", w.root)
				warned = true
			}
			l.Info("Workspace is locked by another process, trying again in %s", LockRetryInterval)
			return fmt.Errorf("workspace %s is locked by another process", w.root)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Debug("Acquired workspace lock")
	return lock, nil
}
