package osutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestNormalizeFilePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("expectations are posix paths")
	}

	t.Setenv("HOME", "/home/llama")
	t.Setenv("RECIPE_TEST_DIR", "/srv/builds")

	cwd, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("filepath.Abs(.) error = %v", err)
	}

	for in, want := range map[string]string{
		"":                         "",
		"~":                        "/home/llama",
		"~/.recipe.cfg":            "/home/llama/.recipe.cfg",
		"$RECIPE_TEST_DIR/project": "/srv/builds/project",
		"/tmp/../tmp/x":            "/tmp/x",
		"project":                  filepath.Join(cwd, "project"),
	} {
		got, err := NormalizeFilePath(in)
		if err != nil {
			t.Errorf("NormalizeFilePath(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeFilePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandHomeOtherUser(t *testing.T) {
	t.Parallel()

	if _, err := ExpandHome("~alpaca/x"); err == nil {
		t.Errorf("ExpandHome(%q) error = nil, want an error", "~alpaca/x")
	}
}

func TestUserHomeDirPrefersHOME(t *testing.T) {
	t.Setenv("HOME", "/home/alpaca")
	t.Setenv("USERPROFILE", `C:\Users\vicuna`)

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	if got != "/home/alpaca" {
		t.Errorf("UserHomeDir() = %q, want %q", got, "/home/alpaca")
	}
}
