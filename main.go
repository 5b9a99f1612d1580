// recipe runs the build script of a project's .jenkins.yml.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jenkinsci/recipe-builder/clicommand"
	"github.com/jenkinsci/recipe-builder/version"
	"github.com/urfave/cli"
)

const appHelpTemplate = `Usage:

  {{.Name}} <command> [options...]

Available commands are:

  {{range .Commands}}{{.Name}}{{with .ShortName}}, {{.}}{{end}}{{ "\t" }}{{.Usage}}
  {{end}}
Use "{{.Name}} <command> --help" for more information about a command.

`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.AppHelpTemplate = appHelpTemplate

	app := cli.NewApp()
	app.Name = "recipe"
	app.Usage = "Run the script of a .jenkins.yml"
	app.Version = version.FullVersion()
	app.ErrWriter = os.Stderr
	app.Commands = clicommand.RecipeCommands(ctx)

	// When no sub command is used
	app.Action = func(c *cli.Context) error {
		return cli.ShowAppHelp(c)
	}

	// When a sub command can't be found
	app.CommandNotFound = func(c *cli.Context, command string) {
		cli.ShowAppHelp(c) //nolint:errcheck // exiting with 1 either way
		os.Exit(1)
	}

	err := app.Run(os.Args)
	stop()
	os.Exit(clicommand.PrintMessageAndReturnExitCode(err))
}
