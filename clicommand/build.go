package clicommand

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/buildkite/interpolate"
	"github.com/google/uuid"
	"github.com/jenkinsci/recipe-builder/cliconfig"
	"github.com/jenkinsci/recipe-builder/env"
	"github.com/jenkinsci/recipe-builder/internal/recipe"
	"github.com/jenkinsci/recipe-builder/internal/shell"
	"github.com/jenkinsci/recipe-builder/internal/workspace"
	"github.com/jenkinsci/recipe-builder/logger"
	"github.com/jenkinsci/recipe-builder/process"
	"github.com/urfave/cli"
)

const buildHelpDescription = `Usage:

   recipe build [options...]

Description:

   Reads the manifest (.jenkins.yml by default) at the root of the workspace
   and runs each command in its top-level ′script:′ list, in order, with
   ′<shell> -c <command>′. Each command is preceded by a heading in the build
   output. The build stops at the first command that fails.

   Commands run in the workspace with recipe's own environment, plus
   WORKSPACE, RECIPE_BUILD_ID and anything given with ′--env′. Values given
   with ′--env′ can refer to other variables as $NAME or ${NAME}.

   recipe exits 0 if every command succeeded, with the exit status of the
   failed command if one failed, and 1 for anything else.

Example:

   $ recipe build --workspace ~/src/app --env CI=true`

type BuildConfig struct {
	GlobalConfig

	Workspace         string        `cli:"workspace" normalize:"filepath" validate:"required"`
	Manifest          string        `cli:"manifest" validate:"required"`
	Shell             string        `cli:"shell" validate:"required"`
	Env               []string      `cli:"env"`
	HeaderStyle       string        `cli:"header-style"`
	PTY               bool          `cli:"pty"`
	LockWorkspace     bool          `cli:"lock-workspace"`
	CancelSignal      string        `cli:"cancel-signal"`
	SignalGracePeriod time.Duration `cli:"signal-grace-period"`
}

// buildFlags returns fresh flags, as a StringSliceFlag accumulates into its
// Value.
func buildFlags() []cli.Flag {
	return []cli.Flag{
		WorkspaceFlag,
		ManifestFlag,
		cli.StringFlag{
			Name:   "shell",
			Value:  shell.DefaultInterpreter,
			Usage:  "The interpreter each command is run with, as ′<shell> -c <command>′",
			EnvVar: "RECIPE_SHELL",
		},
		cli.StringSliceFlag{
			Name:   "env",
			Value:  &cli.StringSlice{},
			Usage:  "Extra environment variables for the build, as KEY=VALUE. Can be given more than once",
			EnvVar: "RECIPE_ENV",
		},
		cli.StringFlag{
			Name:   "header-style",
			Value:  "text",
			Usage:  "How command headings are rendered in the build output (one of: text, html)",
			EnvVar: "RECIPE_HEADER_STYLE",
		},
		cli.BoolFlag{
			Name:   "pty",
			Usage:  "Run commands in a pseudo-terminal",
			EnvVar: "RECIPE_PTY",
		},
		cli.BoolFlag{
			Name:   "lock-workspace",
			Usage:  "Wait for other recipe builds of the same workspace to finish before starting",
			EnvVar: "RECIPE_LOCK_WORKSPACE",
		},
		cli.StringFlag{
			Name:   "cancel-signal",
			Value:  "SIGTERM",
			Usage:  "The signal sent to a running command when the build is cancelled",
			EnvVar: "RECIPE_CANCEL_SIGNAL",
		},
		cli.DurationFlag{
			Name:   "signal-grace-period",
			Value:  10 * time.Second,
			Usage:  "How long a cancelled command has to exit after ′--cancel-signal′ before it's killed",
			EnvVar: "RECIPE_SIGNAL_GRACE_PERIOD",
		},
	}
}

func BuildCommand(ctx context.Context) cli.Command {
	return cli.Command{
		Name:        "build",
		Usage:       "Runs the script of the workspace's manifest",
		Description: buildHelpDescription,
		Flags:       flatten(buildFlags(), globalFlags),
		Action: NewConfigAndLogger(ctx, &RecipeAction[BuildConfig]{
			Action: buildAction,
		}),
	}
}

func buildAction(ctx context.Context, c *cli.Context, l logger.Logger, _ cliconfig.Loader, cfg *BuildConfig) error {
	headerStyle, err := shell.ParseHeaderStyle(cfg.HeaderStyle)
	if err != nil {
		return err
	}
	cancelSignal, err := process.ParseSignal(cfg.CancelSignal)
	if err != nil {
		return err
	}
	extra, err := env.ParseAssignments(cfg.Env)
	if err != nil {
		return fmt.Errorf("parsing --env: %w", err)
	}

	w, err := workspace.New(cfg.Workspace)
	if err != nil {
		return err
	}

	buildID := uuid.NewString()
	l = l.WithFields(logger.StringField("build_id", buildID))

	console := shell.NewWriterLogger(c.App.Writer, !cfg.NoColor && logger.ColorsAvailable(), headerStyle)

	if cfg.LockWorkspace {
		unlock, err := w.Lock(ctx, l, console)
		if err != nil {
			return fmt.Errorf("locking workspace: %w", err)
		}
		defer func() {
			if err := unlock.Unlock(); err != nil {
				l.Warn("Failed to release workspace lock: %v", err)
			}
		}()
	}

	buildEnv, err := BuildEnvironment(os.Environ(), w, buildID, extra)
	if err != nil {
		return fmt.Errorf("interpolating --env: %w", err)
	}

	runner := shell.NewShellRunner(cfg.Shell,
		shell.WithLogger(console),
		shell.WithPTY(cfg.PTY),
		shell.WithInterruptSignal(cancelSignal),
		shell.WithSignalGracePeriod(cfg.SignalGracePeriod),
		shell.WithDebugLogger(l),
	)

	b := &recipe.Builder{
		Workspace:    w,
		ManifestName: cfg.Manifest,
		Runner:       runner,
		Console:      console,
		Env:          buildEnv,
		Logger:       l,
	}

	res := b.Build(ctx)
	if res.Success() {
		l.Info("Build succeeded")
		return nil
	}

	l.Info("Build failed (%s): %v", res.Reason, res.Err)
	return NewSilentExitError(res.ExitStatus())
}

// BuildEnvironment is the environment commands run with: base, then
// WORKSPACE and RECIPE_BUILD_ID, then extra in order. Each value in extra may
// refer to any variable set before it, as $NAME or ${NAME}.
func BuildEnvironment(base []string, w *workspace.Workspace, buildID string, extra []env.Assignment) (*env.Environment, error) {
	e := env.FromSlice(base)
	e.Set("WORKSPACE", w.Root())
	e.Set("RECIPE_BUILD_ID", buildID)

	for _, a := range extra {
		v, err := interpolate.Interpolate(e, a.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Name, err)
		}
		e.Set(a.Name, v)
	}
	return e, nil
}
