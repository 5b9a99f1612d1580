// Package recipe runs the script of a build manifest one step at a time.
package recipe

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is wrapped by every error ParseScript returns.
var ErrInvalidManifest = errors.New("manifest should have a top-level 'script:' list of commands")

// Script is the ordered list of commands from a manifest.
type Script []string

// ParseScript extracts the top-level script list from a manifest.
//
// The document must be a mapping whose "script" key holds a sequence of
// strings. Other keys are ignored. When "script" appears more than once the
// last one is used.
func ParseScript(text string) (Script, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: manifest is empty", ErrInvalidManifest)
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level is a %s, not a mapping", ErrInvalidManifest, root.Line, kindName(root))
	}

	var value *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Kind == yaml.ScalarNode && key.Value == "script" {
			value = root.Content[i+1]
		}
	}
	if value == nil {
		return nil, fmt.Errorf("%w: no script key", ErrInvalidManifest)
	}

	value = resolve(value)
	if value.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d: script is a %s, not a list", ErrInvalidManifest, value.Line, kindName(value))
	}

	script := make(Script, 0, len(value.Content))
	for i, item := range value.Content {
		item = resolve(item)
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, fmt.Errorf("%w: line %d: script item %d is a %s, not a string", ErrInvalidManifest, item.Line, i+1, kindName(item))
		}
		script = append(script, item.Value)
	}

	return script, nil
}

// resolve follows aliases to the node they refer to.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return "null"
		case "!!str":
			return "string"
		case "!!int", "!!float":
			return "number"
		case "!!bool":
			return "boolean"
		}
		return "scalar " + n.ShortTag()
	}
	return "unknown node"
}
