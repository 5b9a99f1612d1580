// Package cliconfig fills config structs from urfave/cli flags, their
// environment variables and an optional config file.
//
// Struct fields opt in with tags:
//
//	cli:"name"              the flag (and config file key) the value comes from
//	normalize:"filepath"    expand env vars and ~, then make the path absolute
//	validate:"required"     comma separated rules: required, file-exists
//	label:"..."             the name used in validation errors
package cliconfig

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jenkinsci/recipe-builder/internal/osutil"
	"github.com/jenkinsci/recipe-builder/logger"
	"github.com/oleiade/reflections"
	"github.com/urfave/cli"
)

type Loader struct {
	// The context that is passed when using a urfave/cli action
	CLI *cli.Context

	// The struct that the config values will be loaded into
	Config any

	// The logger used
	Logger logger.Logger

	// Paths tried in order when --config isn't given
	DefaultConfigFilePaths []string

	// The file that was used when loading this configuration
	File *File
}

// Load fills Config. Flags given on the command line or through their
// environment variable take precedence over the config file, which takes
// precedence over flag defaults.
func (l *Loader) Load() (warnings []string, err error) {
	if path := l.CLI.String("config"); path != "" {
		file := File{Path: path}

		// Because this file was passed in manually, we should throw an error
		// if it doesn't exist.
		if !file.Exists() {
			absolutePath, _ := file.AbsolutePath()
			return warnings, fmt.Errorf("a configuration file could not be found at: %q", absolutePath)
		}
		l.File = &file
	} else {
		for _, path := range l.DefaultConfigFilePaths {
			file := File{Path: path}
			if file.Exists() {
				l.File = &file
				break
			}
		}
	}

	if l.File != nil {
		if err := l.File.Load(); err != nil {
			return warnings, fmt.Errorf("loading config file: %w", err)
		}
	}

	fields, err := reflections.FieldsDeep(l.Config)
	if err != nil {
		return warnings, fmt.Errorf("listing config fields: %w", err)
	}

	for _, fieldName := range fields {
		cliName, _ := reflections.GetFieldTag(l.Config, fieldName, "cli")
		if cliName != "" {
			overridden, err := l.setFieldValueFromCLI(fieldName, cliName)
			if err != nil {
				return warnings, fmt.Errorf("setting config field %s: %w", fieldName, err)
			}
			if overridden {
				warnings = append(warnings,
					fmt.Sprintf("The config file option `%s` is overridden by the command line or environment", cliName))
			}
		}

		normalization, _ := reflections.GetFieldTag(l.Config, fieldName, "normalize")
		if normalization != "" {
			if err := l.normalizeField(fieldName, normalization); err != nil {
				return warnings, fmt.Errorf("normalizing config field %s: %w", fieldName, err)
			}
		}

		validationRules, _ := reflections.GetFieldTag(l.Config, fieldName, "validate")
		if validationRules != "" {
			label, _ := reflections.GetFieldTag(l.Config, fieldName, "label")
			if label == "" {
				label = cliName
			}
			if label == "" {
				label = fieldName
			}

			if err := l.validateField(fieldName, label, validationRules); err != nil {
				return warnings, err
			}
		}
	}

	if l.File != nil && l.Logger != nil {
		l.Logger.Debug("Loaded config file %s", l.File.Path)
	}

	return warnings, nil
}

// setFieldValueFromCLI sets the field from the config file or the CLI
// context. overridden is true when both had a value and the CLI won.
func (l Loader) setFieldValueFromCLI(fieldName, cliName string) (overridden bool, err error) {
	fieldKind, err := reflections.GetFieldKind(l.Config, fieldName)
	if err != nil {
		return false, fmt.Errorf("getting the kind of struct field %q: %w", fieldName, err)
	}
	fieldType, err := reflections.GetFieldType(l.Config, fieldName)
	if err != nil {
		return false, fmt.Errorf("getting the type of struct field %q: %w", fieldName, err)
	}

	var value any

	// Start with whatever the config file says
	if l.File != nil {
		if configFileValue, ok := l.File.Config[cliName]; ok {
			value, err = parseFileValue(configFileValue, fieldKind, fieldType)
			if err != nil {
				return false, fmt.Errorf("config file value for %s: %w", cliName, err)
			}
		}
	}

	// The CLI context wins if the flag was given, or if the file had nothing
	// and the flag's default should apply.
	fromFile := value != nil
	if !fromFile || l.cliValueIsSet(cliName) {
		overridden = fromFile
		switch fieldKind {
		case reflect.String:
			value = l.CLI.String(cliName)
		case reflect.Slice:
			value = l.CLI.StringSlice(cliName)
		case reflect.Bool:
			value = l.CLI.Bool(cliName)
		case reflect.Int:
			value = l.CLI.Int(cliName)
		case reflect.Int64:
			if fieldType != "time.Duration" {
				return false, fmt.Errorf("unsupported field type %s for kind int64", fieldType)
			}
			value = l.CLI.Duration(cliName)
		default:
			return false, fmt.Errorf("unable to handle type: %s", fieldKind)
		}
	}

	if err := reflections.SetField(l.Config, fieldName, value); err != nil {
		return false, fmt.Errorf("setting value field %q to %q: %w", fieldName, value, err)
	}

	return overridden, nil
}

func parseFileValue(raw string, kind reflect.Kind, fieldType string) (any, error) {
	switch kind {
	case reflect.String:
		return raw, nil
	case reflect.Slice:
		var values []string
		for v := range strings.SplitSeq(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return values, nil
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int:
		return strconv.Atoi(raw)
	case reflect.Int64:
		if fieldType != "time.Duration" {
			return nil, fmt.Errorf("unsupported field type %s for kind int64", fieldType)
		}
		return time.ParseDuration(raw)
	}
	return nil, fmt.Errorf("unable to convert string to type %s", kind)
}

func (l Loader) Errorf(format string, v ...any) error {
	suffix := fmt.Sprintf(" See: `%s %s --help`", l.CLI.App.Name, l.CLI.Command.Name)

	return fmt.Errorf(format+suffix, v...)
}

// cliValueIsSet reports whether a flag was given on the command line or
// through its environment variable.
func (l Loader) cliValueIsSet(cliName string) bool {
	if l.CLI.IsSet(cliName) {
		return true
	}

	// cli.Context#IsSet doesn't look at the environment, so find the flag's
	// EnvVar and check it directly.
	for _, flag := range l.CLI.Command.Flags {
		name, _ := reflections.GetField(flag, "Name")
		envVar, _ := reflections.GetField(flag, "EnvVar")
		if name != cliName {
			continue
		}
		if envVarStr, ok := envVar.(string); ok && envVarStr != "" {
			for e := range strings.SplitSeq(envVarStr, ",") {
				if os.Getenv(strings.TrimSpace(e)) != "" {
					return true
				}
			}
		}
	}

	return false
}

func (l Loader) fieldValueIsEmpty(fieldName string) bool {
	value, _ := reflections.GetField(l.Config, fieldName)

	v := reflect.ValueOf(value)
	switch {
	case !v.IsValid():
		return true
	case v.Kind() == reflect.Slice:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

func (l Loader) validateField(fieldName, label, validationRules string) error {
	for rule := range strings.SplitSeq(validationRules, ",") {
		switch rule {
		case "required":
			if l.fieldValueIsEmpty(fieldName) {
				return l.Errorf("Missing %s.", label)
			}

		case "file-exists":
			value, _ := reflections.GetField(l.Config, fieldName)
			if valueAsString, ok := value.(string); ok {
				if _, err := os.Stat(valueAsString); err != nil {
					return fmt.Errorf("couldn't find %s located at %s: %w", label, value, err)
				}
			}

		default:
			return fmt.Errorf("unknown config validation rule %q", rule)
		}
	}

	return nil
}

func (l Loader) normalizeField(fieldName, normalization string) error {
	switch normalization {
	case "filepath":
		value, _ := reflections.GetField(l.Config, fieldName)
		valueAsString, ok := value.(string)
		if !ok {
			return fmt.Errorf("filepath normalization only works on string fields")
		}

		normalizedPath, err := osutil.NormalizeFilePath(valueAsString)
		if err != nil {
			return err
		}
		return reflections.SetField(l.Config, fieldName, normalizedPath)

	default:
		return fmt.Errorf("unknown normalization %q", normalization)
	}
}
