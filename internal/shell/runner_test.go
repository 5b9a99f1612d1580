//go:build !windows

package shell_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jenkinsci/recipe-builder/env"
	"github.com/jenkinsci/recipe-builder/internal/shell"
	"github.com/jenkinsci/recipe-builder/logger"
)

func testEnv(t *testing.T) *env.Environment {
	t.Helper()
	e := env.New()
	e.Set("PATH", os.Getenv("PATH"))
	return e
}

func TestShellRunnerEchoesPromptAndOutput(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	r := shell.NewShellRunner("/bin/sh", shell.WithLogger(shell.NewWriterLogger(out, false, shell.HeaderText)))

	code, err := r.Run(context.Background(), shell.Command{
		Script: "echo hello; echo oops >&2",
		Dir:    t.TempDir(),
		Env:    testEnv(t),
	})
	if err != nil {
		t.Fatalf("r.Run() error = %v", err)
	}
	if code != 0 {
		t.Errorf("r.Run() code = %d, want 0", code)
	}

	want := `$ /bin/sh -c "echo hello\; echo oops \>\&2"` + "\nhello\noops\n"
	if diff := cmp.Diff(out.String(), want); diff != "" {
		t.Errorf("build log diff (-got +want):\n%s", diff)
	}
}

func TestShellRunnerNonZeroExit(t *testing.T) {
	t.Parallel()

	r := shell.NewShellRunner("/bin/sh", shell.WithLogger(shell.TestingLogger{TB: t}))

	code, err := r.Run(context.Background(), shell.Command{Script: "exit 3", Env: testEnv(t)})
	if err != nil {
		t.Fatalf("r.Run() error = %v", err)
	}
	if code != 3 {
		t.Errorf("r.Run() code = %d, want 3", code)
	}
}

func TestShellRunnerSetsDirAndPWD(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := &bytes.Buffer{}
	r := shell.NewShellRunner("/bin/sh", shell.WithStdout(out))

	e := testEnv(t)
	e.Set("RECIPE_GREETING", "llamas")

	code, err := r.Run(context.Background(), shell.Command{
		Script: `echo "$PWD"; echo "$RECIPE_GREETING"`,
		Dir:    dir,
		Env:    e,
	})
	if err != nil {
		t.Fatalf("r.Run() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("r.Run() code = %d, want 0", code)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if diff := cmp.Diff(lines, []string{dir, "llamas"}); diff != "" {
		t.Errorf("output diff (-got +want):\n%s", diff)
	}

	if _, ok := e.Get("PWD"); ok {
		t.Errorf("r.Run() set PWD on the caller's environment")
	}
}

func TestShellRunnerMissingInterpreter(t *testing.T) {
	t.Parallel()

	r := shell.NewShellRunner("/does/not/exist/sh")

	code, err := r.Run(context.Background(), shell.Command{Script: "true", Env: testEnv(t)})
	if err == nil {
		t.Fatalf("r.Run() error = nil, want an error")
	}
	if code != -1 {
		t.Errorf("r.Run() code = %d, want -1", code)
	}
	if errors.Is(err, shell.ErrInterrupted) {
		t.Errorf("r.Run() error = %v, should not be an interruption", err)
	}
}

func TestShellRunnerMissingDir(t *testing.T) {
	t.Parallel()

	r := shell.NewShellRunner("/bin/sh")

	code, err := r.Run(context.Background(), shell.Command{
		Script: "true",
		Dir:    "/does/not/exist",
		Env:    testEnv(t),
	})
	if err == nil {
		t.Fatalf("r.Run() error = nil, want an error")
	}
	if code != -1 {
		t.Errorf("r.Run() code = %d, want -1", code)
	}
}

func TestShellRunnerInterrupted(t *testing.T) {
	t.Parallel()

	r := shell.NewShellRunner("/bin/sh",
		shell.WithLogger(shell.TestingLogger{TB: t}),
		shell.WithSignalGracePeriod(time.Second),
		shell.WithDebugLogger(logger.NewConsoleLogger(logger.NewTestPrinter(t), func(int) {})),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	code, err := r.Run(ctx, shell.Command{Script: "sleep 30", Env: testEnv(t)})
	if !errors.Is(err, shell.ErrInterrupted) {
		t.Fatalf("r.Run() error = %v, want %v", err, shell.ErrInterrupted)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("r.Run() error = %v, want it to wrap %v", err, context.DeadlineExceeded)
	}
	if code != -1 {
		t.Errorf("r.Run() code = %d, want -1", code)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("r.Run() took %v after cancellation", elapsed)
	}
}

func TestShellRunnerDoesNotStartAfterCancel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	r := shell.NewShellRunner("/bin/sh", shell.WithLogger(shell.TestingLogger{TB: t}), shell.WithStdout(out))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := r.Run(ctx, shell.Command{Script: "echo ran", Env: testEnv(t)})
	if !errors.Is(err, shell.ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("r.Run() error = %v, want %v wrapping %v", err, shell.ErrInterrupted, context.Canceled)
	}
	if code != -1 {
		t.Errorf("r.Run() code = %d, want -1", code)
	}
	if out.Len() != 0 {
		t.Errorf("r.Run() output = %q, want nothing", out.String())
	}
}
