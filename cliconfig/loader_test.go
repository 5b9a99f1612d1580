package cliconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jenkinsci/recipe-builder/cliconfig"
	"github.com/urfave/cli"
)

type testConfig struct {
	Config    string        `cli:"config"`
	Workspace string        `cli:"workspace" normalize:"filepath" validate:"required"`
	Shell     string        `cli:"shell"`
	Env       []string      `cli:"env"`
	PTY       bool          `cli:"pty"`
	Grace     time.Duration `cli:"grace"`
}

func testFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "config"},
		cli.StringFlag{Name: "workspace", Value: "."},
		cli.StringFlag{Name: "shell", Value: "/bin/sh", EnvVar: "RECIPE_LOADER_TEST_SHELL"},
		cli.StringSliceFlag{Name: "env", Value: &cli.StringSlice{}},
		cli.BoolFlag{Name: "pty"},
		cli.DurationFlag{Name: "grace", Value: 10 * time.Second},
	}
}

// load runs args through a one-command app and loads testConfig from it.
func load(t *testing.T, args ...string) (testConfig, []string, error) {
	t.Helper()

	var (
		cfg      testConfig
		warnings []string
		loadErr  error
	)

	app := cli.NewApp()
	app.Name = "recipe"
	app.Commands = []cli.Command{{
		Name:  "build",
		Flags: testFlags(),
		Action: func(c *cli.Context) error {
			l := cliconfig.Loader{CLI: c, Config: &cfg}
			warnings, loadErr = l.Load()
			return nil
		},
	}}

	if err := app.Run(append([]string{"recipe", "build"}, args...)); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}
	return cfg, warnings, loadErr
}

func TestLoaderDefaults(t *testing.T) {
	cfg, warnings, err := load(t)
	if err != nil {
		t.Fatalf("Loader.Load() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Loader.Load() warnings = %q, want none", warnings)
	}

	cwd, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("filepath.Abs(.) error = %v", err)
	}

	want := testConfig{
		Workspace: cwd,
		Shell:     "/bin/sh",
		Grace:     10 * time.Second,
	}
	if diff := cmp.Diff(cfg, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("loaded config diff (-got +want):\n%s", diff)
	}
}

func TestLoaderFlags(t *testing.T) {
	dir := t.TempDir()

	cfg, _, err := load(t,
		"--workspace", dir,
		"--shell", "/bin/bash",
		"--env", "A=1", "--env", "B=2,3",
		"--pty",
		"--grace", "3s",
	)
	if err != nil {
		t.Fatalf("Loader.Load() error = %v", err)
	}

	want := testConfig{
		Workspace: dir,
		Shell:     "/bin/bash",
		Env:       []string{"A=1", "B=2,3"},
		PTY:       true,
		Grace:     3 * time.Second,
	}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("loaded config diff (-got +want):\n%s", diff)
	}
}

func TestLoaderConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipe.cfg")
	contents := "workspace=" + dir + "\nshell=/bin/zsh\nenv=A=1,B=2\npty=true\ngrace=1m\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("os.WriteFile(%q) error = %v", path, err)
	}

	t.Setenv("RECIPE_LOADER_TEST_SHELL", "/bin/dash")

	cfg, warnings, err := load(t, "--config", path)
	if err != nil {
		t.Fatalf("Loader.Load() error = %v", err)
	}

	want := testConfig{
		Config:    path,
		Workspace: dir,
		Shell:     "/bin/dash",
		Env:       []string{"A=1", "B=2"},
		PTY:       true,
		Grace:     time.Minute,
	}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("loaded config diff (-got +want):\n%s", diff)
	}

	wantWarnings := []string{"The config file option `shell` is overridden by the command line or environment"}
	if diff := cmp.Diff(warnings, wantWarnings); diff != "" {
		t.Errorf("warnings diff (-got +want):\n%s", diff)
	}
}

func TestLoaderMissingConfigFile(t *testing.T) {
	_, _, err := load(t, "--config", filepath.Join(t.TempDir(), "nope.cfg"))
	if err == nil {
		t.Fatalf("Loader.Load() error = nil, want an error")
	}
}

func TestLoaderRequired(t *testing.T) {
	_, _, err := load(t, "--workspace", "")
	if err == nil {
		t.Fatalf("Loader.Load() error = nil, want a missing workspace error")
	}
	if got, want := err.Error(), "Missing workspace. See: `recipe build --help`"; got != want {
		t.Errorf("Loader.Load() error = %q, want %q", got, want)
	}
}
