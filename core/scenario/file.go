package scenario

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFile reads scenarios from a YAML mapping of name to growth delta:
//
//	low: -0.01
//	baseline: 0
//	high: 0.01
//
// The mapping order of the file is kept.
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes an ordered scenario mapping.
func Parse(data []byte) ([]Scenario, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse scenarios: line %d: expected a mapping of name to delta", root.Line)
	}
	out := make([]Scenario, 0, len(root.Content)/2)
	seen := make(map[string]bool, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if seen[k.Value] {
			return nil, fmt.Errorf("parse scenarios: line %d: duplicate scenario %q", k.Line, k.Value)
		}
		delta, err := strconv.ParseFloat(v.Value, 64)
		if err != nil || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("parse scenarios: line %d: delta of %q is not a number", v.Line, k.Value)
		}
		seen[k.Value] = true
		out = append(out, Scenario{Name: k.Value, Delta: delta})
	}
	return out, nil
}
