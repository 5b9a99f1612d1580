package clicommand_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jenkinsci/recipe-builder/clicommand"
	"github.com/jenkinsci/recipe-builder/env"
	"github.com/jenkinsci/recipe-builder/internal/workspace"
	"github.com/urfave/cli"
)

// run runs the recipe app with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	app := cli.NewApp()
	app.Name = "recipe"
	app.Writer = &stdout
	app.ErrWriter = io.Discard
	app.Commands = clicommand.RecipeCommands(context.Background())

	err := app.Run(append([]string{"recipe"}, args...))
	return stdout.String(), err
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, workspace.DefaultManifestName), []byte(contents), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	return dir
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
}

func TestBuildSucceeds(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := writeManifest(t, "script:\n  - echo hello\n  - echo \"$GREETING from $WORKSPACE\"\n")

	out, err := run(t, "build", "--workspace", dir, "--no-color", "--env", "GREETING=llamas")
	if err != nil {
		t.Fatalf("recipe build error = %v", err)
	}

	want := strings.Join([]string{
		"~~~ echo hello",
		"$ /bin/sh -c \"echo hello\"",
		"hello",
		`~~~ echo "$GREETING from $WORKSPACE"`,
		`$ /bin/sh -c "echo \"\$GREETING from \$WORKSPACE\""`,
		"llamas from " + dir,
		"",
	}, "\n")
	if diff := cmp.Diff(out, want); diff != "" {
		t.Errorf("build output diff (-got +want):\n%s", diff)
	}
}

func TestBuildFailingStep(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := writeManifest(t, "script:\n  - echo A\n  - exit 7\n  - echo C\n")

	out, err := run(t, "build", "--workspace", dir, "--no-color", "--header-style", "html")
	if !errors.Is(err, clicommand.NewSilentExitError(7)) {
		t.Fatalf("recipe build error = %v, want silent exit 7", err)
	}

	want := strings.Join([]string{
		"<h2>echo A</h2>",
		`$ /bin/sh -c "echo A"`,
		"A",
		"<h2>exit 7</h2>",
		`$ /bin/sh -c "exit 7"`,
		"🚨 Error: The command exited with status 7",
		"",
	}, "\n")
	if diff := cmp.Diff(out, want); diff != "" {
		t.Errorf("build output diff (-got +want):\n%s", diff)
	}
}

func TestBuildMissingManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := run(t, "build", "--workspace", dir)
	if !errors.Is(err, clicommand.NewSilentExitError(1)) {
		t.Fatalf("recipe build error = %v, want silent exit 1", err)
	}
	if want := "No .jenkins.yml found in " + dir + "\n"; out != want {
		t.Errorf("recipe build output = %q, want %q", out, want)
	}
}

func TestBuildInvalidManifest(t *testing.T) {
	t.Parallel()

	dir := writeManifest(t, "notscript: [a, b]\n")

	out, err := run(t, "build", "--workspace", dir)
	if !errors.Is(err, clicommand.NewSilentExitError(1)) {
		t.Fatalf("recipe build error = %v, want silent exit 1", err)
	}
	if want := "Your .jenkins.yml is invalid, it should have a top-level 'script:'.\n"; out != want {
		t.Errorf("recipe build output = %q, want %q", out, want)
	}
}

func TestBuildBadFlags(t *testing.T) {
	t.Parallel()

	dir := writeManifest(t, "script: []\n")

	for name, args := range map[string][]string{
		"header style":  {"--header-style", "markdown"},
		"cancel signal": {"--cancel-signal", "SIGLLAMA"},
		"env":           {"--env", "NOT_AN_ASSIGNMENT"},
		"log format":    {"--log-format", "xml"},
		"log level":     {"--log-level", "loud"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, append([]string{"build", "--workspace", dir}, args...)...)
			if err == nil {
				t.Fatalf("recipe build %q error = nil, want an error", args)
			}
			if code := clicommand.PrintMessageAndReturnExitCode(err); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := writeManifest(t, "script:\n  - make\n  - make test\n")

	out, err := run(t, "validate", "--workspace", dir)
	if err != nil {
		t.Fatalf("recipe validate error = %v", err)
	}
	if want := "1. make\n2. make test\n"; out != want {
		t.Errorf("recipe validate output = %q, want %q", out, want)
	}
}

func TestValidateInvalid(t *testing.T) {
	t.Parallel()

	dir := writeManifest(t, "script: make\n")

	out, err := run(t, "validate", "--workspace", dir)
	if !errors.Is(err, clicommand.NewSilentExitError(1)) {
		t.Fatalf("recipe validate error = %v, want silent exit 1", err)
	}
	if want := "Your .jenkins.yml is invalid, it should have a top-level 'script:'.\n"; out != want {
		t.Errorf("recipe validate output = %q, want %q", out, want)
	}
}

func TestBuildEnvironment(t *testing.T) {
	t.Parallel()

	w, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New() error = %v", err)
	}

	extra := []env.Assignment{{Name: "CI", Value: "true"}, {Name: "WORKSPACE", Value: "/overridden"}}
	got, err := clicommand.BuildEnvironment([]string{"PATH=/usr/bin", "CI=false"}, w, "build-1", extra)
	if err != nil {
		t.Fatalf("BuildEnvironment() error = %v", err)
	}

	want := map[string]string{
		"PATH":            "/usr/bin",
		"CI":              "true",
		"WORKSPACE":       "/overridden",
		"RECIPE_BUILD_ID": "build-1",
	}
	if diff := cmp.Diff(got.Dump(), want); diff != "" {
		t.Errorf("BuildEnvironment() diff (-got +want):\n%s", diff)
	}
}

func TestBuildEnvironment_Interpolates(t *testing.T) {
	t.Parallel()

	w, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New() error = %v", err)
	}

	extra, err := env.ParseAssignments([]string{
		"PATH=$WORKSPACE/bin:${PATH}",
		"PRICE=$$5",
		"TARGET=${MISSING:-dist}",
		"A=one",
		"B=${A}-two",
		"A=${B}-three",
	})
	if err != nil {
		t.Fatalf("env.ParseAssignments() error = %v", err)
	}
	got, err := clicommand.BuildEnvironment([]string{"PATH=/usr/bin"}, w, "build-1", extra)
	if err != nil {
		t.Fatalf("BuildEnvironment() error = %v", err)
	}

	want := map[string]string{
		"PATH":            w.Root() + "/bin:/usr/bin",
		"PRICE":           "$5",
		"TARGET":          "dist",
		"A":               "one-two-three",
		"B":               "one-two",
		"WORKSPACE":       w.Root(),
		"RECIPE_BUILD_ID": "build-1",
	}
	if diff := cmp.Diff(got.Dump(), want); diff != "" {
		t.Errorf("BuildEnvironment() diff (-got +want):\n%s", diff)
	}
}
