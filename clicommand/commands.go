package clicommand

import (
	"context"

	"github.com/urfave/cli"
)

// RecipeCommands returns every recipe command. Their actions run with ctx,
// which should be cancelled when the build is.
func RecipeCommands(ctx context.Context) []cli.Command {
	return []cli.Command{
		BuildCommand(ctx),
		ValidateCommand(ctx),
	}
}
