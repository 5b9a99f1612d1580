package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jenkinsci/recipe-builder/env"
	"github.com/jenkinsci/recipe-builder/internal/shell"
	"github.com/jenkinsci/recipe-builder/internal/workspace"
	"github.com/jenkinsci/recipe-builder/logger"
	"github.com/jenkinsci/recipe-builder/tracetools"
)

// ErrInterrupted is wrapped by runner errors caused by the build being
// cancelled.
var ErrInterrupted = shell.ErrInterrupted

// CommandRunner runs one script command to completion. A command that ran
// but failed returns its exit status and a nil error. An error means the
// command couldn't be run or was interrupted.
type CommandRunner interface {
	Run(ctx context.Context, cmd shell.Command) (int, error)
}

// Console is the build log the builder reports to.
type Console interface {
	Printf(format string, v ...any)
	Headerf(format string, v ...any)
	Commentf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Reason says why a build finished the way it did.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonManifestMissing
	ReasonManifestUnreadable
	ReasonManifestInvalid
	ReasonStepFailed
	ReasonStepFault
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonManifestMissing:
		return "manifest missing"
	case ReasonManifestUnreadable:
		return "manifest unreadable"
	case ReasonManifestInvalid:
		return "manifest invalid"
	case ReasonStepFailed:
		return "step failed"
	case ReasonStepFault:
		return "step fault"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// StepResult is the outcome of running one command.
type StepResult struct {
	Index      int
	Command    string
	ExitStatus int
	Err        error
	Duration   time.Duration
}

// Success reports whether the command ran and exited zero.
func (s StepResult) Success() bool {
	return s.Err == nil && s.ExitStatus == 0
}

// Result is the outcome of a build.
type Result struct {
	Reason Reason
	Err    error
	Steps  []StepResult
}

// Success reports whether every step succeeded.
func (r Result) Success() bool {
	return r.Reason == ReasonNone
}

// ExitStatus is the status a process running the build should exit with:
// 0 on success, the failing command's status if a command failed, or 1.
func (r Result) ExitStatus() int {
	switch r.Reason {
	case ReasonNone:
		return 0
	case ReasonStepFailed:
		if n := len(r.Steps); n > 0 && r.Steps[n-1].ExitStatus > 0 {
			return r.Steps[n-1].ExitStatus
		}
	}
	return 1
}

// Builder runs the script of a workspace's manifest.
type Builder struct {
	Workspace *workspace.Workspace

	// ManifestName defaults to workspace.DefaultManifestName.
	ManifestName string

	Runner  CommandRunner
	Console Console

	// Env is passed to every command. It may be nil.
	Env *env.Environment

	// Logger defaults to logger.Discard.
	Logger logger.Logger
}

// Build loads the manifest and runs its commands in order, stopping at the
// first one that doesn't succeed. Every problem is reported to the console
// and described by the result.
func (b *Builder) Build(ctx context.Context) Result {
	l := b.Logger
	if l == nil {
		l = logger.Discard
	}
	name := b.ManifestName
	if name == "" {
		name = workspace.DefaultManifestName
	}

	l = l.WithFields(logger.StringField("workspace", b.Workspace.Root()))

	text, err := b.Workspace.LoadManifest(name)
	switch {
	case errors.Is(err, workspace.ErrManifestMissing):
		b.Console.Printf("No %s found in %s", name, b.Workspace.Root())
		return Result{Reason: ReasonManifestMissing, Err: err}

	case err != nil:
		b.Console.Printf("Failed to read %s: %v", name, err)
		return Result{Reason: ReasonManifestUnreadable, Err: err}
	}

	l.Debug("Loaded %s (%s)", name, humanize.Bytes(uint64(len(text))))

	script, err := ParseScript(text)
	if err != nil {
		l.Debug("Parsing %s: %v", name, err)
		b.Console.Printf("Your %s is invalid, it should have a top-level 'script:'.", name)
		return Result{Reason: ReasonManifestInvalid, Err: err}
	}

	l.Info("Running %d step(s) from %s", len(script), name)
	if len(script) == 0 {
		b.Console.Commentf("No commands to run in %s", name)
	}

	res := Result{Steps: make([]StepResult, 0, len(script))}
	for i, command := range script {
		step := b.runStep(ctx, l, i, command)
		res.Steps = append(res.Steps, step)

		if step.Err != nil {
			if isInterruption(step.Err) {
				b.Console.Printf("Interrupted during script execution")
			} else {
				b.Console.Printf("IOException during script execution")
			}
			res.Reason, res.Err = ReasonStepFault, step.Err
			return res
		}

		if step.ExitStatus != 0 {
			b.Console.Errorf("The command exited with status %d", step.ExitStatus)
			res.Reason = ReasonStepFailed
			res.Err = fmt.Errorf("step %d %q exited with status %d", i+1, command, step.ExitStatus)
			return res
		}
	}

	return res
}

func (b *Builder) runStep(ctx context.Context, l logger.Logger, i int, command string) StepResult {
	l = l.WithFields(logger.IntField("step", i+1), logger.StringField("command", command))

	span, ctx := tracetools.StartSpanFromContext(ctx, "recipe.step", map[string]any{
		"step":    i + 1,
		"command": command,
	})

	b.Console.Headerf("%s", command)

	start := time.Now()
	status, err := b.Runner.Run(ctx, shell.Command{
		Script: command,
		Dir:    b.Workspace.Root(),
		Env:    b.Env,
	})
	step := StepResult{
		Index:      i,
		Command:    command,
		ExitStatus: status,
		Err:        err,
		Duration:   time.Since(start),
	}

	span.SetTag("exit_status", status)
	tracetools.FinishWithError(span, err)

	l = l.WithFields(logger.IntField("exit_status", status), logger.DurationField("duration", step.Duration))
	switch {
	case err != nil:
		l.Error("Step could not be run: %v", err)
	case status != 0:
		l.Warn("Step failed")
	default:
		l.Info("Step succeeded")
	}

	return step
}

func isInterruption(err error) bool {
	return errors.Is(err, ErrInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
