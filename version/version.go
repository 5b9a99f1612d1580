// Package version provides the recipe version strings.
package version

import (
	_ "embed"
	"runtime"
	"strings"
)

// buildVersion can be set at link time:
//
//	go build -ldflags "-X github.com/jenkinsci/recipe-builder/version.buildVersion=abc" .

//go:embed VERSION
var baseVersion string
var buildVersion string

func Version() string {
	return strings.TrimSpace(baseVersion)
}

func BuildVersion() string {
	if buildVersion == "" {
		return "x"
	}
	return buildVersion
}

// FullVersion is shown by `recipe --version`.
func FullVersion() string {
	return Version() + "+" + BuildVersion() + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
