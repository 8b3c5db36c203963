package dynamoval

import (
	"reflect"
	"unicode/utf8"
)

// A Variant is one named case of a closed sum type, in the externally
// tagged convention: a variant with no payload encodes as the bare
// string "Name", and a variant carrying a payload encodes as a
// single-entry map {"Name": payload}.
//
// Decoding is strict about the single-entry shape: a map with zero
// entries or more than one entry fails with a single-key error, and
// any source that is neither a string nor a map fails with an
// expected-enum error.
type Variant struct {
	Name  string
	Value any
}

// VariantOf decodes av as a variant whose payload is a T. It returns
// the variant's name and the decoded payload; a unit variant returns
// the zero T.
func VariantOf[T any](av AttributeValue) (string, T, error) {
	var zero T
	var vr Variant
	if err := decodeVariant(av, reflect.ValueOf(&vr).Elem(), nil); err != nil {
		return "", zero, err
	}
	if vr.Value == nil {
		return vr.Name, zero, nil
	}
	var out T
	path := &pathNode{kind: pathVariant, name: vr.Name}
	if err := unmarshalPath(vr.Value.(AttributeValue), &out, path); err != nil {
		return "", zero, err
	}
	return vr.Name, out, nil
}

func encodeVariant(v reflect.Value) (AttributeValue, error) {
	vr := v.Interface().(Variant)
	if vr.Value == nil {
		return NewString(vr.Name), nil
	}
	payload, err := Marshal(vr.Value)
	if err != nil {
		return AttributeValue{}, err
	}
	return NewMap(map[string]AttributeValue{vr.Name: payload}), nil
}

// decodeVariant leaves the payload as a raw AttributeValue in
// Variant.Value, so callers can re-decode it into a concrete type
// once the name is known.
func decodeVariant(av AttributeValue, v reflect.Value, path *pathNode) error {
	switch av.Kind() {
	case KindString:
		v.Set(reflect.ValueOf(Variant{Name: av.StringValue()}))
		return nil
	case KindMap:
		m := av.MapValue()
		if len(m) != 1 {
			return errAt(ErrExpectedSingleKey, path, av)
		}
		for name, payload := range m {
			v.Set(reflect.ValueOf(Variant{Name: name, Value: payload}))
		}
		return nil
	}
	return errAt(ErrExpectedEnum, path, av)
}

// A Char is a single Unicode code point. It encodes as a one-rune
// string, and decoding demands exactly one rune.
type Char rune

func encodeChar(v reflect.Value) (AttributeValue, error) {
	return NewString(string(rune(v.Int()))), nil
}

func decodeChar(av AttributeValue, v reflect.Value, path *pathNode) error {
	if av.Kind() != KindString {
		return errAt(ErrExpectedChar, path, av)
	}
	r, ok := singleRune(av.StringValue())
	if !ok {
		return errAt(ErrExpectedChar, path, av)
	}
	v.SetInt(int64(r))
	return nil
}

func singleRune(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError && size == 1 {
		return 0, false
	}
	return r, true
}
