// Package matcher contains the default [domain.Matcher] implementation used
// by the in-memory backend.
package matcher

import (
	"fmt"
	"strings"

	"github.com/mergington/schooldb/domain"
)

// Matcher evaluates tagged filter conditions against documents. All
// conditions in a filter must hold (logical AND); an empty filter matches
// everything.
type Matcher struct{}

// NewMatcher returns a new implementation of [domain.Matcher].
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(doc domain.Document, filter domain.Filter) (bool, error) {
	for _, cond := range filter {
		matches, err := m.matchCond(doc, cond)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) matchCond(doc domain.Document, cond domain.Cond) (bool, error) {
	switch c := cond.(type) {
	case domain.Eq:
		value, ok := Lookup(doc, c.Path)
		if !ok {
			return c.Value == nil, nil
		}
		return equal(value, c.Value), nil

	case domain.In:
		// Membership needs at least one overlap between the stored
		// array and the candidate set. A scalar field matches when it
		// is itself among the candidates.
		value, ok := Lookup(doc, c.Path)
		if !ok || value == nil {
			return false, nil
		}
		stored, ok := value.([]any)
		if !ok {
			stored = []any{value}
		}
		for _, item := range stored {
			for _, candidate := range c.Values {
				if equal(item, candidate) {
					return true, nil
				}
			}
		}
		return false, nil

	case domain.Gte:
		value, ok := stringAt(doc, c.Path)
		return ok && value >= c.Bound, nil

	case domain.Lte:
		value, ok := stringAt(doc, c.Path)
		return ok && value <= c.Bound, nil

	default:
		return false, fmt.Errorf("unknown filter condition %T", cond)
	}
}

// Lookup resolves a dot-separated path against nested documents. It reports
// false when any path segment is absent or crosses a non-document value.
func Lookup(doc domain.Document, path string) (any, bool) {
	var value any = doc
	for part := range strings.SplitSeq(path, ".") {
		var sub domain.Document
		switch t := value.(type) {
		case domain.Document:
			sub = t
		case map[string]any:
			sub = domain.Document(t)
		default:
			return nil, false
		}
		var ok bool
		if value, ok = sub[part]; !ok {
			return nil, false
		}
	}
	return value, true
}

func stringAt(doc domain.Document, path string) (string, bool) {
	value, ok := Lookup(doc, path)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func equal(a, b any) bool {
	if a == b {
		return true
	}
	// Numeric fields may arrive as different widths depending on where the
	// document came from.
	na, aok := asFloat(a)
	nb, bok := asFloat(b)
	return aok && bok && na == nb
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
