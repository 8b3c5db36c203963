package dynamoval

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Kind identifies which of the ten DynamoDB attribute shapes an
// [AttributeValue] holds.
type Kind int

const (
	kindInvalid Kind = iota

	// KindNumber is a number, stored as decimal text ("N").
	KindNumber
	// KindString is a string ("S").
	KindString
	// KindBool is a boolean ("BOOL").
	KindBool
	// KindBinary is raw bytes ("B").
	KindBinary
	// KindNull is the explicit null marker ("NULL").
	KindNull
	// KindMap is a string-keyed map of attribute values ("M").
	KindMap
	// KindList is a heterogeneous list of attribute values ("L").
	KindList
	// KindStringSet is a set of strings ("SS").
	KindStringSet
	// KindNumberSet is a set of numbers, stored as decimal text ("NS").
	KindNumberSet
	// KindBinarySet is a set of raw byte strings ("BS").
	KindBinarySet
)

// String returns the wire tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "N"
	case KindString:
		return "S"
	case KindBool:
		return "BOOL"
	case KindBinary:
		return "B"
	case KindNull:
		return "NULL"
	case KindMap:
		return "M"
	case KindList:
		return "L"
	case KindStringSet:
		return "SS"
	case KindNumberSet:
		return "NS"
	case KindBinarySet:
		return "BS"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AttributeValue is a single DynamoDB value: exactly one of the ten
// shapes the wire protocol defines. The zero value is invalid; use the
// New* constructors.
//
// Numbers are carried as decimal text, never as native floats, because
// that is how DynamoDB transmits them. No arithmetic is ever performed
// on the text.
type AttributeValue struct {
	kind Kind
	str  string                    // N, S
	boo  bool                      // BOOL, NULL
	bin  []byte                    // B
	m    map[string]AttributeValue // M
	l    []AttributeValue          // L
	ss   []string                  // SS, NS
	bs   [][]byte                  // BS
}

// Item is DynamoDB's row unit: a string-keyed map of attribute values.
type Item map[string]AttributeValue

// NewNumber returns a number value holding the given decimal text.
func NewNumber(text string) AttributeValue {
	return AttributeValue{kind: KindNumber, str: text}
}

// NewString returns a string value.
func NewString(s string) AttributeValue {
	return AttributeValue{kind: KindString, str: s}
}

// NewBool returns a boolean value.
func NewBool(b bool) AttributeValue {
	return AttributeValue{kind: KindBool, boo: b}
}

// NewBinary returns a binary value holding the given bytes.
func NewBinary(bs []byte) AttributeValue {
	return AttributeValue{kind: KindBinary, bin: bs}
}

// NewNull returns the null value. The wire payload is the boolean
// true, per the DynamoDB convention for representing absence.
func NewNull() AttributeValue {
	return AttributeValue{kind: KindNull, boo: true}
}

// NewMap returns a map value.
func NewMap(m map[string]AttributeValue) AttributeValue {
	return AttributeValue{kind: KindMap, m: m}
}

// NewList returns a list value. Elements need not share a shape.
func NewList(l []AttributeValue) AttributeValue {
	return AttributeValue{kind: KindList, l: l}
}

// NewStringSet returns a string-set value.
func NewStringSet(ss []string) AttributeValue {
	return AttributeValue{kind: KindStringSet, ss: ss}
}

// NewNumberSet returns a number-set value holding decimal text
// elements.
func NewNumberSet(ns []string) AttributeValue {
	return AttributeValue{kind: KindNumberSet, ss: ns}
}

// NewBinarySet returns a binary-set value.
func NewBinarySet(bs [][]byte) AttributeValue {
	return AttributeValue{kind: KindBinarySet, bs: bs}
}

// Kind reports which shape the value holds.
func (v AttributeValue) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null marker.
func (v AttributeValue) IsNull() bool { return v.kind == KindNull }

// NumberValue returns the decimal text of a number value, or "" if the
// value is not a number.
func (v AttributeValue) NumberValue() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.str
}

// StringValue returns the text of a string value, or "" if the value
// is not a string.
func (v AttributeValue) StringValue() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// BoolValue returns the payload of a boolean value, or false if the
// value is not a boolean.
func (v AttributeValue) BoolValue() bool {
	return v.kind == KindBool && v.boo
}

// BinaryValue returns the bytes of a binary value, or nil if the value
// is not binary.
func (v AttributeValue) BinaryValue() []byte {
	if v.kind != KindBinary {
		return nil
	}
	return v.bin
}

// MapValue returns the entries of a map value, or nil if the value is
// not a map.
func (v AttributeValue) MapValue() map[string]AttributeValue {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// ListValue returns the elements of a list value, or nil if the value
// is not a list.
func (v AttributeValue) ListValue() []AttributeValue {
	if v.kind != KindList {
		return nil
	}
	return v.l
}

// StringSetValue returns the elements of a string-set value, or nil if
// the value is not a string set.
func (v AttributeValue) StringSetValue() []string {
	if v.kind != KindStringSet {
		return nil
	}
	return v.ss
}

// NumberSetValue returns the decimal text elements of a number-set
// value, or nil if the value is not a number set.
func (v AttributeValue) NumberSetValue() []string {
	if v.kind != KindNumberSet {
		return nil
	}
	return v.ss
}

// BinarySetValue returns the elements of a binary-set value, or nil if
// the value is not a binary set.
func (v AttributeValue) BinarySetValue() [][]byte {
	if v.kind != KindBinarySet {
		return nil
	}
	return v.bs
}

// Equal reports whether two values hold the same shape and payload.
// Set elements are compared in order; callers that treat sets as
// unordered must sort first.
func (v AttributeValue) Equal(o AttributeValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber, KindString:
		return v.str == o.str
	case KindBool, KindNull:
		return v.boo == o.boo
	case KindBinary:
		return slices.Equal(v.bin, o.bin)
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, ve := range v.m {
			oe, ok := o.m[k]
			if !ok || !ve.Equal(oe) {
				return false
			}
		}
		return true
	case KindList:
		return slices.EqualFunc(v.l, o.l, AttributeValue.Equal)
	case KindStringSet, KindNumberSet:
		return slices.Equal(v.ss, o.ss)
	case KindBinarySet:
		return slices.EqualFunc(v.bs, o.bs, slices.Equal)
	}
	return true
}

// String renders a compact debug form of the value, used in error
// messages. Map keys are sorted so the rendering is deterministic.
func (v AttributeValue) String() string {
	var sb strings.Builder
	v.debug(&sb)
	return sb.String()
}

func (v AttributeValue) debug(sb *strings.Builder) {
	switch v.kind {
	case KindNumber:
		fmt.Fprintf(sb, "N(%s)", v.str)
	case KindString:
		fmt.Fprintf(sb, "S(%q)", v.str)
	case KindBool:
		fmt.Fprintf(sb, "BOOL(%v)", v.boo)
	case KindBinary:
		fmt.Fprintf(sb, "B(%x)", v.bin)
	case KindNull:
		fmt.Fprintf(sb, "NULL(%v)", v.boo)
	case KindMap:
		sb.WriteString("M{")
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: ", k)
			v.m[k].debug(sb)
		}
		sb.WriteString("}")
	case KindList:
		sb.WriteString("L[")
		for i, e := range v.l {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.debug(sb)
		}
		sb.WriteString("]")
	case KindStringSet:
		fmt.Fprintf(sb, "SS(%q)", v.ss)
	case KindNumberSet:
		fmt.Fprintf(sb, "NS(%v)", v.ss)
	case KindBinarySet:
		sb.WriteString("BS[")
		for i, b := range v.bs {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%x", b)
		}
		sb.WriteString("]")
	default:
		sb.WriteString("<invalid>")
	}
}
