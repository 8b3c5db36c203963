package dynamoval

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// setOption is a struct field's requested set encoding, parsed from
// its tag.
type setOption int

const (
	setNone setOption = iota
	// setAuto infers the set kind from the first serialized element.
	setAuto
	setStrings
	setNumbers
	setBinaries
)

// structField is the information about a struct field that needs to
// be marshaled/unmarshaled.
type structField struct {
	Name  string
	Index [][]int
	Type  reflect.Type

	// OmitEmpty skips the field on marshal when its value is the
	// zero value for its type.
	OmitEmpty bool
	// Set requests that the field's sequence value be encoded as a
	// DynamoDB set instead of a list.
	Set setOption
}

// GetWithZero loads the struct field from structVal. If loading
// requires traversing a nil pointer into an embedded struct,
// GetWithZero returns a non-settable zero value of the field.
func (f *structField) GetWithZero(structVal reflect.Value) reflect.Value {
	v := structVal
	for i, hop := range f.Index {
		if i > 0 {
			if v.IsNil() {
				return reflect.Zero(f.Type)
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(hop)
	}
	return v
}

// GetWithAlloc loads the struct field from structVal. If loading
// requires traversing a nil pointer into an embedded struct,
// GetWithAlloc allocates zero values appropriately. The returned
// [reflect.Value] is settable.
func (f *structField) GetWithAlloc(structVal reflect.Value) reflect.Value {
	v := structVal
	for i, hop := range f.Index {
		if i > 0 {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(hop)
	}
	return v
}

// structInfo is the information about a struct relevant to
// marshaling/unmarshaling.
type structInfo struct {
	// Name is the struct's name, for use in diagnostics.
	Name string
	// Type is the struct's type, for use in diagnostics.
	Type reflect.Type

	// Fields is the information about each struct field eligible for
	// encoding/decoding, in declaration order.
	Fields []*structField

	byName map[string]*structField
	depth  map[string]int
}

// FieldNamed returns the field with the given attribute name, or nil.
func (s *structInfo) FieldNamed(name string) *structField {
	return s.byName[name]
}

// getStructInfo returns the structInfo for t.
//
// getStructInfo returns an error if t is not a struct, or if two
// fields resolve to the same attribute name.
func getStructInfo(t reflect.Type) (*structInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", t)
	}

	ret := &structInfo{
		Name:   t.String(),
		Type:   t,
		byName: map[string]*structField{},
		depth:  map[string]int{},
	}

	for field := range structFields(t, nil) {
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, set, skip, err := parseStructTag(field)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", ret.Name, field.Name, err)
		}
		if skip {
			continue
		}
		if name == "" {
			name = field.Name
		}
		fieldInfo := &structField{
			Name:      name,
			Type:      field.Type,
			Index:     allocSteps(t, field.Index),
			OmitEmpty: omitEmpty,
			Set:       set,
		}
		depth := len(field.Index)
		if prev := ret.byName[name]; prev != nil {
			// Embedded fields shadow the way Go visibility does: the
			// shallower field wins, ties are ambiguous.
			prevDepth := ret.depth[name]
			if depth == prevDepth {
				return nil, fmt.Errorf("duplicate attribute name %q in struct %s", name, ret.Name)
			}
			if depth > prevDepth {
				continue
			}
			*prev = *fieldInfo
			ret.depth[name] = depth
			continue
		}
		ret.byName[name] = fieldInfo
		ret.depth[name] = depth
		ret.Fields = append(ret.Fields, fieldInfo)
	}

	return ret, nil
}

// parseStructTag returns the information contained in field's
// "dynamo" struct tag: a rename, the omitempty flag, and the set
// encoding options (set, stringset, numberset, binaryset).
func parseStructTag(field reflect.StructField) (name string, omitEmpty bool, set setOption, skip bool, err error) {
	tag, ok := field.Tag.Lookup("dynamo")
	if !ok {
		return "", false, setNone, false, nil
	}
	if tag == "-" {
		return "", false, setNone, true, nil
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			omitEmpty = true
		case "set":
			set = setAuto
		case "stringset":
			set = setStrings
		case "numberset":
			set = setNumbers
		case "binaryset":
			set = setBinaries
		case "":
		default:
			return "", false, setNone, false, fmt.Errorf("unknown dynamo tag option %q", opt)
		}
	}
	return name, omitEmpty, set, skip, nil
}

// allocSteps partitions a multi-hop traversal of struct fields into
// segments that end at either the final value, or at a struct pointer
// that might be nil.
//
// This partition is used by [structField.GetWithZero] and
// [structField.GetWithAlloc] to load embedded struct fields that
// require traversing a nil pointer.
func allocSteps(t reflect.Type, idx []int) [][]int {
	var ret [][]int
	prev := 0
	t = t.Field(idx[0]).Type
	for i := 1; i < len(idx); i++ {
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
			// Hop through a struct pointer that might be nil, cut.
			ret = append(ret, idx[prev:i])
			prev = i
			t = t.Elem()
		}
		t = t.Field(idx[i]).Type
	}
	ret = append(ret, idx[prev:])
	return ret
}

// structFields iterates the encodable fields of t, flattening
// embedded structs. An embedded field that carries its own name in a
// dynamo tag is kept as a regular field instead of being flattened.
func structFields(t reflect.Type, idx []int) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			f := t.Field(i)
			idx = append(idx, i)
			if f.Anonymous && !taggedName(f) {
				at := f.Type
				if at.Kind() == reflect.Pointer {
					at = at.Elem()
				}
				if at.Kind() == reflect.Struct {
					for af := range structFields(at, idx) {
						if !yield(af) {
							return
						}
					}
					idx = idx[:len(idx)-1]
					continue
				}
			}
			f.Index = append([]int(nil), idx...)
			if !yield(f) {
				return
			}
			idx = idx[:len(idx)-1]
		}
	}
}

func taggedName(f reflect.StructField) bool {
	tag := f.Tag.Get("dynamo")
	return tag != "" && strings.Split(tag, ",")[0] != ""
}
