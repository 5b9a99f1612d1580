package clicommand

import (
	"context"
	"fmt"
	"os"

	"github.com/jenkinsci/recipe-builder/cliconfig"
	"github.com/jenkinsci/recipe-builder/logger"
	"github.com/oleiade/reflections"
	"github.com/urfave/cli"
)

// RecipeAction is a command action that runs with its config loaded and a
// logger ready.
type RecipeAction[T any] struct {
	Action func(
		ctx context.Context,
		c *cli.Context,
		l logger.Logger,
		loader cliconfig.Loader,
		cfg *T,
	) error
}

// NewConfigAndLogger wraps f in a cli.ActionFunc that loads a fresh T,
// builds the logger it asks for and applies the global flags.
func NewConfigAndLogger[T any](ctx context.Context, f *RecipeAction[T]) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := new(T)
		loader := cliconfig.Loader{
			CLI:                    c,
			Config:                 cfg,
			DefaultConfigFilePaths: DefaultConfigFilePaths(),
		}
		warnings, err := loader.Load()
		if err != nil {
			return err
		}

		l, err := CreateLogger(cfg)
		if err != nil {
			return err
		}
		loader.Logger = l

		// Now that we have a logger, log out the warnings that loading config generated
		for _, warning := range warnings {
			l.Warn("%s", warning)
		}

		if err := HandleGlobalFlags(l, cfg); err != nil {
			return err
		}

		if loader.File != nil {
			l.Debug("Using config file %s", loader.File.Path)
		}

		return f.Action(ctx, c, l, loader, cfg)
	}
}

// CreateLogger returns a logger writing to stderr in the format the
// config's LogFormat field asks for.
func CreateLogger(cfg any) (logger.Logger, error) {
	format := "text"
	if v, err := reflections.GetField(cfg, "LogFormat"); err == nil {
		if s, ok := v.(string); ok && s != "" {
			format = s
		}
	}

	var printer logger.Printer
	switch format {
	case "text":
		p := logger.NewTextPrinter(os.Stderr)
		if noColor, err := reflections.GetField(cfg, "NoColor"); err == nil && noColor == true {
			p.Colors = false
		}
		printer = p
	case "json":
		printer = logger.NewJSONPrinter(os.Stderr)
	default:
		return nil, fmt.Errorf("invalid log format %q, must be one of text or json", format)
	}

	return logger.NewConsoleLogger(printer, os.Exit), nil
}

// HandleGlobalFlags applies --log-level and --debug to l.
func HandleGlobalFlags(l logger.Logger, cfg any) error {
	if v, err := reflections.GetField(cfg, "LogLevel"); err == nil {
		if s, ok := v.(string); ok && s != "" {
			level, err := logger.LevelFromString(s)
			if err != nil {
				return err
			}
			l.SetLevel(level)
		}
	}

	// --debug wins over --log-level
	if debug, err := reflections.GetField(cfg, "Debug"); err == nil && debug == true {
		l.SetLevel(logger.DEBUG)
	}

	return nil
}
