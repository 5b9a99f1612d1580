package clicommand

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli"
)

// GlobalConfig is embedded in every command's config.
type GlobalConfig struct {
	Config    string `cli:"config"`
	Debug     bool   `cli:"debug"`
	LogLevel  string `cli:"log-level"`
	LogFormat string `cli:"log-format"`
	NoColor   bool   `cli:"no-color"`
}

var ConfigFlag = cli.StringFlag{
	Name:   "config",
	Value:  "",
	Usage:  "Path to a configuration file",
	EnvVar: "RECIPE_CONFIG",
}

var DebugFlag = cli.BoolFlag{
	Name:   "debug",
	Usage:  "Enable debug mode. Synonym for ′--log-level debug′. Takes precedence over ′--log-level′",
	EnvVar: "RECIPE_DEBUG",
}

var LogLevelFlag = cli.StringFlag{
	Name:   "log-level",
	Value:  "notice",
	Usage:  "Set the log level for recipe itself. Build output isn't affected (one of: debug, info, notice, warn, error, fatal)",
	EnvVar: "RECIPE_LOG_LEVEL",
}

var LogFormatFlag = cli.StringFlag{
	Name:   "log-format",
	Value:  "text",
	Usage:  "The format to use for recipe's own logs (one of: text, json)",
	EnvVar: "RECIPE_LOG_FORMAT",
}

var NoColorFlag = cli.BoolFlag{
	Name:   "no-color",
	Usage:  "Don't show colors in logging or build output",
	EnvVar: "RECIPE_NO_COLOR",
}

var WorkspaceFlag = cli.StringFlag{
	Name:   "workspace",
	Value:  ".",
	Usage:  "The directory holding the checked out project",
	EnvVar: "RECIPE_WORKSPACE",
}

var ManifestFlag = cli.StringFlag{
	Name:   "manifest",
	Value:  ".jenkins.yml",
	Usage:  "The name of the manifest file at the root of the workspace",
	EnvVar: "RECIPE_MANIFEST",
}

var globalFlags = []cli.Flag{
	ConfigFlag,
	NoColorFlag,
	DebugFlag,
	LogLevelFlag,
	LogFormatFlag,
}

func flatten(flagSets ...[]cli.Flag) []cli.Flag {
	length := 0
	for _, flagSet := range flagSets {
		length += len(flagSet)
	}

	flat := make([]cli.Flag, 0, length)
	for _, flagSet := range flagSets {
		flat = append(flat, flagSet...)
	}

	return flat
}

// DefaultConfigFilePaths returns the config files tried, in order, when
// --config isn't given.
func DefaultConfigFilePaths() (paths []string) {
	if runtime.GOOS == "windows" {
		paths = []string{
			"$USERPROFILE\\.recipe.cfg",
			"$USERPROFILE\\AppData\\Local\\Recipe\\recipe.cfg",
		}
	} else {
		paths = []string{
			"$HOME/.recipe.cfg",
			"/etc/recipe/recipe.cfg",
		}
	}

	// Also check to see if there's a recipe.cfg next to the binary
	pathToBinary, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err == nil {
		paths = append([]string{filepath.Join(pathToBinary, "recipe.cfg")}, paths...)
	}

	return paths
}
