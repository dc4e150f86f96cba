package csvcodec

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"contactsync/internal/interchange/model"
)

//go:embed aliases.json
var aliasesJSON []byte

// fieldAlias is one entry of the embedded header table.
type fieldAlias struct {
	Field    string   `json:"field"`
	Label    string   `json:"label"`
	Aliases  []string `json:"aliases"`
	ReadOnly bool     `json:"read_only"`
}

// aliasTable resolves free-form header text to canonical field names and
// back to display labels.
type aliasTable struct {
	byKey    map[string]string
	labels   map[string]string
	readOnly map[string]bool
}

var aliases = mustLoadAliases(aliasesJSON)

func mustLoadAliases(data []byte) *aliasTable {
	t, err := loadAliases(data)
	if err != nil {
		panic(err)
	}
	return t
}

func loadAliases(data []byte) (*aliasTable, error) {
	var entries []fieldAlias
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse aliases.json: %w", err)
	}

	t := &aliasTable{
		byKey:    make(map[string]string),
		labels:   make(map[string]string, len(entries)),
		readOnly: make(map[string]bool),
	}
	for _, e := range entries {
		t.labels[e.Field] = e.Label
		if e.ReadOnly {
			t.readOnly[e.Field] = true
		}
		keys := append([]string{e.Field, e.Label}, e.Aliases...)
		for _, k := range keys {
			nk := normalizeHeader(k)
			if owner, ok := t.byKey[nk]; ok && owner != e.Field {
				return nil, fmt.Errorf("alias %q maps to both %s and %s", k, owner, e.Field)
			}
			t.byKey[nk] = e.Field
		}
	}

	for _, f := range model.CanonicalFields {
		if _, ok := t.labels[f]; !ok {
			return nil, fmt.Errorf("aliases.json has no entry for %s", f)
		}
	}
	return t, nil
}

// Resolve returns the canonical field for a header cell.
func (t *aliasTable) Resolve(header string) (field string, ok bool) {
	field, ok = t.byKey[normalizeHeader(header)]
	return field, ok
}

// Label returns the display header for a canonical field or a custom
// projection ("custom.<key>" is labelled with the key itself).
func (t *aliasTable) Label(field string) string {
	if key, ok := strings.CutPrefix(field, model.CustomFieldPrefix); ok {
		return key
	}
	if l, ok := t.labels[field]; ok {
		return l
	}
	return field
}

// normalizeHeader lowercases and keeps only letters and digits, so that
// "First Name", "first_name" and "firstName" share one key.
func normalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveHeader maps a header cell to the key used in RawRow.Fields. The
// second result is false for columns that import ignores (blank headers and
// read-only fields such as id).
func ResolveHeader(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	if field, ok := aliases.Resolve(header); ok {
		if aliases.readOnly[field] {
			return "", false
		}
		return field, true
	}
	return model.CustomFieldPrefix + header, true
}

// Label exposes the display header for a field.
func Label(field string) string {
	return aliases.Label(field)
}
