package policy

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed policies/import_resolution.json
var policiesFS embed.FS

// Loader loads resolution matrices from embedded JSON files
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadMatrix loads policies/<name>.json
func (l *Loader) LoadMatrix(name string) (*Matrix, error) {
	data, err := policiesFS.ReadFile("policies/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", name, err)
	}
	return ParseMatrix(data)
}

// ParseMatrix decodes and checks a matrix.
func ParseMatrix(data []byte) (*Matrix, error) {
	var m Matrix
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse policy matrix: %w", err)
	}
	if len(m.Rules) == 0 {
		return nil, fmt.Errorf("policy matrix %q has no rules", m.Name)
	}
	for i, r := range m.Rules {
		if r.Match != "new" && r.Match != "duplicate" {
			return nil, fmt.Errorf("rule %d: unknown match %q", i, r.Match)
		}
		switch r.Action {
		case ActionCreate, ActionUpdate, ActionSkip, ActionConflict:
		default:
			return nil, fmt.Errorf("rule %d: unknown action %q", i, r.Action)
		}
	}
	return &m, nil
}
