// Package data builds [domain.Document] values out of structured Go types.
package data

import (
	"fmt"
	"strings"

	goreflect "github.com/goccy/go-reflect"

	"github.com/mergington/schooldb/domain"
)

// TagName is the struct tag consulted when converting structs. The bson tag
// is shared with the MongoDB backend so one tag set defines the wire
// contract.
const TagName = "bson"

// NewDocument converts a struct, map or existing document into a
// [domain.Document]. Struct fields use their bson tag as field name; a "-"
// tag skips the field. Nested structs become nested Documents and slices
// become []any. A nil input yields an empty document.
func NewDocument(in any) (domain.Document, error) {
	if in == nil {
		return domain.Document{}, nil
	}
	switch t := in.(type) {
	case domain.Document:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	}

	r := goreflect.ValueNoEscapeOf(in)
	k := r.Kind()
	for k == goreflect.Interface || k == goreflect.Ptr {
		if r.IsNil() {
			return domain.Document{}, nil
		}
		r = r.Elem()
		k = r.Kind()
	}
	if k != goreflect.Struct && k != goreflect.Map {
		return nil, fmt.Errorf("expected map or struct, got %s", r.Type().String())
	}
	doc, err := parseReflect(r)
	if err != nil {
		return nil, err
	}
	res, ok := doc.(domain.Document)
	if !ok {
		return nil, fmt.Errorf("expected document, got %T", doc)
	}
	return res, nil
}

func normalizeMap[M ~map[string]any](m M) (domain.Document, error) {
	res := make(domain.Document, len(m))
	for k, v := range m {
		val, err := normalizeValue(v)
		if err != nil {
			return nil, err
		}
		res[k] = val
	}
	return res, nil
}

func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case domain.Document:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			val, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			res[n] = val
		}
		return res, nil
	case []string:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = item
		}
		return res, nil
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return t, nil
	default:
		return parseReflect(goreflect.ValueNoEscapeOf(v))
	}
}

func parseReflect(r goreflect.Value) (any, error) {
	for r.Kind() == goreflect.Ptr || r.Kind() == goreflect.Interface {
		if r.IsNil() {
			return nil, nil
		}
		r = r.Elem()
	}
	switch r.Kind() {
	case goreflect.Invalid:
		return nil, nil
	case goreflect.Struct:
		return parseStruct(r)
	case goreflect.Map:
		return parseMapReflect(r)
	case goreflect.Slice:
		if r.IsNil() {
			return []any{}, nil
		}
		fallthrough
	case goreflect.Array:
		res := make([]any, r.Len())
		for n := range r.Len() {
			val, err := parseReflect(r.Index(n))
			if err != nil {
				return nil, err
			}
			res[n] = val
		}
		return res, nil
	case goreflect.String:
		return r.String(), nil
	case goreflect.Bool:
		return r.Bool(), nil
	case goreflect.Int, goreflect.Int8, goreflect.Int16, goreflect.Int32, goreflect.Int64:
		return int(r.Int()), nil
	case goreflect.Uint, goreflect.Uint8, goreflect.Uint16, goreflect.Uint32, goreflect.Uint64:
		return int(r.Uint()), nil
	case goreflect.Float32, goreflect.Float64:
		return r.Float(), nil
	default:
		return nil, fmt.Errorf("unsupported document value kind %s", r.Kind())
	}
}

func parseStruct(r goreflect.Value) (any, error) {
	typ := r.Type()
	res := make(domain.Document, typ.NumField())
	for n := range typ.NumField() {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}
		name := fieldName(field)
		if name == "" {
			continue
		}
		val, err := parseReflect(r.Field(n))
		if err != nil {
			return nil, err
		}
		res[name] = val
	}
	return res, nil
}

func fieldName(field goreflect.StructField) string {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func parseMapReflect(r goreflect.Value) (any, error) {
	if r.Type().Key().Kind() != goreflect.String {
		return nil, fmt.Errorf("document keys must be strings, got %s", r.Type().Key())
	}
	res := make(domain.Document, r.Len())
	for _, key := range r.MapKeys() {
		val, err := parseReflect(r.MapIndex(key))
		if err != nil {
			return nil, err
		}
		res[key.String()] = val
	}
	return res, nil
}
