package policy

import (
	"fmt"

	"contactsync/internal/interchange/matcher"
	"contactsync/internal/interchange/model"
)

// Engine resolves classified rows to actions using the import matrix
type Engine struct {
	matrix *Matrix
}

// NewEngine creates an Engine from the embedded matrix
func NewEngine() (*Engine, error) {
	m, err := NewLoader().LoadMatrix("import_resolution")
	if err != nil {
		return nil, fmt.Errorf("failed to load import resolution policy: %w", err)
	}
	return NewEngineWithMatrix(m)
}

// NewEngineWithMatrix checks that every combination of kind and flags is
// covered before accepting m.
func NewEngineWithMatrix(m *Matrix) (*Engine, error) {
	e := &Engine{matrix: m}
	for _, kind := range []matcher.Kind{matcher.New, matcher.Duplicate} {
		for _, p := range []model.ImportPolicy{
			{}, {SkipDuplicates: true}, {UpdateExisting: true}, {SkipDuplicates: true, UpdateExisting: true},
		} {
			if _, ok := e.lookup(kind, p); !ok {
				return nil, fmt.Errorf("policy %q does not cover %s with %+v", m.Name, kind, p)
			}
		}
	}
	return e, nil
}

// Resolve picks the action for one row.
func (e *Engine) Resolve(cls matcher.Classification, p model.ImportPolicy) Action {
	a, _ := e.lookup(cls.Kind, p)
	return a
}

func (e *Engine) lookup(kind matcher.Kind, p model.ImportPolicy) (Action, bool) {
	for _, r := range e.matrix.Rules {
		if r.Match != kind.String() {
			continue
		}
		if r.UpdateExisting != nil && *r.UpdateExisting != p.UpdateExisting {
			continue
		}
		if r.SkipDuplicates != nil && *r.SkipDuplicates != p.SkipDuplicates {
			continue
		}
		return r.Action, true
	}
	return "", false
}
