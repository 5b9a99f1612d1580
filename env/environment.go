// Package env provides the environment that build steps are run with.
package env

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v2"
)

// Environment is a map of environment variables, with the keys normalized
// for case-insensitive operating systems
type Environment struct {
	underlying *xsync.MapOf[string, string]
}

func New() *Environment {
	return &Environment{underlying: xsync.NewMapOf[string]()}
}

func NewWithLength(length int) *Environment {
	return &Environment{underlying: xsync.NewMapOfPresized[string](length)}
}

// Split splits an environment variable (in the form "name=value") into the name
// and value substrings. If there is no '=', or the first '=' is at the start,
// it returns `"", "", false`.
func Split(l string) (name, value string, ok bool) {
	// Windows creates variables beginning with '=' in some circumstances,
	// see https://github.com/golang/go/issues/49886. Those are dropped.
	i := strings.IndexRune(l, '=')
	if i <= 0 {
		return "", "", false
	}
	return l[:i], l[i+1:], true
}

// FromSlice creates a new environment from a string slice of KEY=VALUE,
// silently skipping malformed entries.
func FromSlice(s []string) *Environment {
	env := NewWithLength(len(s))
	for _, l := range s {
		if k, v, ok := Split(l); ok {
			env.Set(k, v)
		}
	}
	return env
}

// Assignment is a single NAME=VALUE pair, as given on the command line.
type Assignment struct {
	Name  string
	Value string
}

// ParseAssignments is like FromSlice, but keeps the entries in order and
// rejects entries that are not in the KEY=VALUE form. It is used for user
// supplied variables, where a typo should not be ignored.
func ParseAssignments(s []string) ([]Assignment, error) {
	as := make([]Assignment, 0, len(s))
	for _, l := range s {
		k, v, ok := Split(l)
		if !ok {
			return nil, fmt.Errorf("invalid environment variable %q, expected KEY=VALUE", l)
		}
		as = append(as, Assignment{Name: k, Value: v})
	}
	return as, nil
}

// Dump returns a copy of the environment with all keys normalized
func (e *Environment) Dump() map[string]string {
	d := make(map[string]string, e.underlying.Size())
	e.underlying.Range(func(k, v string) bool {
		d[normalizeKeyName(k)] = v
		return true
	})
	return d
}

// Get returns a key from the environment
func (e *Environment) Get(key string) (string, bool) {
	return e.underlying.Load(normalizeKeyName(key))
}

// Set sets a key in the environment
func (e *Environment) Set(key string, value string) string {
	e.underlying.Store(normalizeKeyName(key), value)
	return value
}

// Length returns the length of the environment
func (e *Environment) Length() int {
	return e.underlying.Size()
}

// Copy returns a copy of the env
func (e *Environment) Copy() *Environment {
	if e == nil {
		return New()
	}

	c := NewWithLength(e.Length())
	e.underlying.Range(func(k, v string) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// ToSlice returns a sorted slice representation of the environment
func (e *Environment) ToSlice() []string {
	s := make([]string, 0, e.Length())
	e.underlying.Range(func(k, v string) bool {
		s = append(s, k+"="+v)
		return true
	})

	// Ensure they are in a consistent order (helpful for tests)
	sort.Strings(s)

	return s
}

// Environment variables on Windows are case-insensitive: PATH, Path and pATH
// all name the same variable, while os.Environ returns them in their original
// casing. Keys are upper-cased on Windows so Get("PATH") works regardless.
// Unix is case sensitive, so keys are left alone.
func normalizeKeyName(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}
