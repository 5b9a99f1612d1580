package clicommand

import (
	"context"
	"errors"
	"fmt"

	"github.com/jenkinsci/recipe-builder/cliconfig"
	"github.com/jenkinsci/recipe-builder/internal/recipe"
	"github.com/jenkinsci/recipe-builder/internal/workspace"
	"github.com/jenkinsci/recipe-builder/logger"
	"github.com/urfave/cli"
)

const validateHelpDescription = `Usage:

   recipe validate [options...]

Description:

   Checks that the workspace's manifest has a top-level ′script:′ list of
   commands, and prints the commands a build would run. Nothing is run.

Example:

   $ recipe validate --workspace ~/src/app
   1. make
   2. make test`

type ValidateConfig struct {
	GlobalConfig

	Workspace string `cli:"workspace" normalize:"filepath" validate:"required"`
	Manifest  string `cli:"manifest" validate:"required"`
}

func ValidateCommand(ctx context.Context) cli.Command {
	return cli.Command{
		Name:        "validate",
		Usage:       "Checks the workspace's manifest without running anything",
		Description: validateHelpDescription,
		Flags:       flatten([]cli.Flag{WorkspaceFlag, ManifestFlag}, globalFlags),
		Action: NewConfigAndLogger(ctx, &RecipeAction[ValidateConfig]{
			Action: validateAction,
		}),
	}
}

func validateAction(_ context.Context, c *cli.Context, l logger.Logger, _ cliconfig.Loader, cfg *ValidateConfig) error {
	w, err := workspace.New(cfg.Workspace)
	if err != nil {
		return err
	}

	text, err := w.LoadManifest(cfg.Manifest)
	switch {
	case errors.Is(err, workspace.ErrManifestMissing):
		fmt.Fprintf(c.App.Writer, "No %s found in %s\n", cfg.Manifest, w.Root()) //nolint:errcheck // CLI output
		return NewSilentExitError(1)
	case err != nil:
		return err
	}

	script, err := recipe.ParseScript(text)
	if err != nil {
		fmt.Fprintf(c.App.Writer, "Your %s is invalid, it should have a top-level 'script:'.\n", cfg.Manifest) //nolint:errcheck // CLI output
		l.Error("%v", err)
		return NewSilentExitError(1)
	}

	l.Debug("%s has %d step(s)", cfg.Manifest, len(script))
	for i, command := range script {
		fmt.Fprintf(c.App.Writer, "%d. %s\n", i+1, command) //nolint:errcheck // CLI output
	}
	return nil
}
