// Package catalog holds the default rule catalog, embedded as YAML.
//
// The catalog is configuration data: it is decoded into the same raw rule
// definitions as a user's namelint.yaml and goes through the same loader.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var source []byte

// Source returns the catalog document as shipped.
func Source() []byte {
	return append([]byte(nil), source...)
}

// Definitions decodes the embedded catalog into raw rule definitions.
func Definitions() (map[string]map[string]any, error) {
	defs, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return defs, nil
}

// Parse decodes a YAML document with a top-level "rules" mapping.
func Parse(data []byte) (map[string]map[string]any, error) {
	var doc struct {
		Rules map[string]any `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return FromMap(doc.Rules)
}

// FromMap converts a generic "rules" mapping, as produced by a YAML decoder
// or a koanf lookup, into rule definitions keyed by rule ID.
func FromMap(rules map[string]any) (map[string]map[string]any, error) {
	defs := make(map[string]map[string]any, len(rules))
	for id, raw := range rules {
		switch def := raw.(type) {
		case map[string]any:
			defs[id] = def
		case nil:
			defs[id] = map[string]any{}
		default:
			return nil, fmt.Errorf("rule %q: definition must be a mapping, got %T", id, raw)
		}
	}
	return defs, nil
}
