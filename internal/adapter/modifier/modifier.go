// Package modifier contains the default [domain.Modifier] implementation used
// by the in-memory backend.
package modifier

import (
	"fmt"
	"reflect"

	"github.com/mergington/schooldb/domain"
)

// Modifier applies push and pull operations to documents.
type Modifier struct{}

// NewModifier returns a new implementation of [domain.Modifier].
func NewModifier() *Modifier {
	return &Modifier{}
}

// Modify implements [domain.Modifier]. The returned document is a modified
// deep copy; the input is left untouched so a failed update never corrupts
// the store.
func (m *Modifier) Modify(doc domain.Document, update domain.Update) (domain.Document, error) {
	res := doc.Clone()
	switch u := update.(type) {
	case domain.Push:
		return res, m.push(res, u)
	case domain.Pull:
		return res, m.pull(res, u)
	default:
		return nil, fmt.Errorf("unknown update operation %T", update)
	}
}

func (m *Modifier) push(doc domain.Document, u domain.Push) error {
	value, ok := doc[u.Path]
	if !ok || value == nil {
		value = []any{}
	}
	array, ok := value.([]any)
	if !ok {
		return domain.ErrNonArrayField{Path: u.Path, Op: "push"}
	}
	doc[u.Path] = append(array, u.Value)
	return nil
}

func (m *Modifier) pull(doc domain.Document, u domain.Pull) error {
	array, ok := doc[u.Path].([]any)
	if !ok {
		// Absent or non-array fields make pull a no-op.
		return nil
	}
	res := make([]any, 0, len(array))
	for _, item := range array {
		if !equal(item, u.Value) {
			res = append(res, item)
		}
	}
	doc[u.Path] = res
	return nil
}

func equal(a, b any) bool {
	if a == b {
		return true
	}
	return reflect.DeepEqual(a, b)
}
