package cliconfig

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jenkinsci/recipe-builder/internal/osutil"
)

// File is a config file of `key=value` (or `key: value`) lines. Blank lines
// and lines starting with # are ignored, and a value wrapped in quotes keeps
// any # it contains.
type File struct {
	// The path to the file
	Path string

	// A map of key/values that was loaded from the file
	Config map[string]string
}

func (f *File) Load() error {
	f.Config = map[string]string{}

	absolutePath, err := f.AbsolutePath()
	if err != nil {
		return fmt.Errorf("getting absolute path for %s: %w", f.Path, err)
	}

	file, err := os.Open(absolutePath)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", f.Path, err)
	}
	defer file.Close() //nolint:errcheck // it's only open for reading

	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("parsing config line %d: %w", lineNum, err)
		}
		f.Config[key] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading file %s: %w", f.Path, err)
	}

	return nil
}

func (f File) AbsolutePath() (string, error) {
	return osutil.NormalizeFilePath(f.Path)
}

func (f File) Exists() bool {
	absolutePath, err := f.AbsolutePath()
	if err != nil {
		return false
	}
	return osutil.FileExists(absolutePath)
}

func parseLine(line string) (key, value string, err error) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", fmt.Errorf("can't separate key from value in %q, no valid separators (= or :) found", line)
	}

	key = strings.TrimSpace(strings.TrimPrefix(line[:i], "export "))
	if key == "" {
		return "", "", fmt.Errorf("missing key in %q", line)
	}

	value = strings.TrimSpace(line[i+1:])
	if q := quoted(value); q != "" {
		value = strings.ReplaceAll(value[1:strings.LastIndexByte(value, q[0])], `\n`, "\n")
		return key, value, nil
	}

	// Unquoted values end at a comment.
	if j := strings.Index(value, " #"); j >= 0 {
		value = strings.TrimSpace(value[:j])
	}
	return key, value, nil
}

// quoted returns the quote character value starts with, if it's closed.
func quoted(value string) string {
	if len(value) < 2 || (value[0] != '"' && value[0] != '\'') {
		return ""
	}
	if strings.LastIndexByte(value, value[0]) == 0 {
		return ""
	}
	return value[:1]
}
