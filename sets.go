package dynamoval

import "reflect"

// A SetValue marks a value for encoding as one of the three set
// shapes instead of a list. The wrappers returned by [StringSet],
// [NumberSet], and [BinarySet] demand that every element encode as a
// string, number, or binary value respectively; [Set] infers the set
// kind from the first element.
//
// SetValue only directs encoding. Decoding a set into a slice needs
// no wrapper: slice targets accept all four sequence shapes.
type SetValue struct {
	value any
	opt   setOption
}

// Set wraps v for encoding as a set whose kind is inferred from the
// first element. The wrapped value must encode as a non-empty,
// homogenous list of strings, numbers, or binary values.
func Set(v any) SetValue { return SetValue{value: v, opt: setAuto} }

// StringSet wraps v for encoding as a string set. Every element of
// the wrapped value must encode as a string.
func StringSet(v any) SetValue { return SetValue{value: v, opt: setStrings} }

// NumberSet wraps v for encoding as a number set. Every element of
// the wrapped value must encode as a number.
func NumberSet(v any) SetValue { return SetValue{value: v, opt: setNumbers} }

// BinarySet wraps v for encoding as a binary set. Every element of
// the wrapped value must encode as binary data.
func BinarySet(v any) SetValue { return SetValue{value: v, opt: setBinaries} }

func encodeSetValue(v reflect.Value) (AttributeValue, error) {
	sv := v.Interface().(SetValue)
	av, err := Marshal(sv.value)
	if err != nil {
		return AttributeValue{}, err
	}
	return convertToSet(av, sv.opt)
}

// convertToSet reinterprets an encoded value as a set. The typed
// requests check only that each element has the demanded kind; the
// inferring request additionally rejects empty and mixed-kind
// sources, since there is nothing to infer from.
func convertToSet(av AttributeValue, opt setOption) (AttributeValue, error) {
	switch opt {
	case setStrings:
		if av.Kind() == KindStringSet {
			return av, nil
		}
		elems, err := setElems(av)
		if err != nil {
			return AttributeValue{}, err
		}
		ss := make([]string, len(elems))
		for i, e := range elems {
			if e.Kind() != KindString {
				return AttributeValue{}, &Error{Kind: ErrStringSetExpectedType, Value: &e}
			}
			ss[i] = e.StringValue()
		}
		return NewStringSet(ss), nil
	case setNumbers:
		if av.Kind() == KindNumberSet {
			return av, nil
		}
		elems, err := setElems(av)
		if err != nil {
			return AttributeValue{}, err
		}
		ns := make([]string, len(elems))
		for i, e := range elems {
			if e.Kind() != KindNumber {
				return AttributeValue{}, &Error{Kind: ErrNumberSetExpectedType, Value: &e}
			}
			ns[i] = e.NumberValue()
		}
		return NewNumberSet(ns), nil
	case setBinaries:
		if av.Kind() == KindBinarySet {
			return av, nil
		}
		elems, err := setElems(av)
		if err != nil {
			return AttributeValue{}, err
		}
		bs := make([][]byte, len(elems))
		for i, e := range elems {
			if e.Kind() != KindBinary {
				return AttributeValue{}, &Error{Kind: ErrBinarySetExpectedType, Value: &e}
			}
			bs[i] = e.BinaryValue()
		}
		return NewBinarySet(bs), nil
	case setAuto:
		return inferSet(av)
	}
	return av, nil
}

func setElems(av AttributeValue) ([]AttributeValue, error) {
	if av.Kind() != KindList {
		return nil, &Error{Kind: ErrNotSetLike, Value: &av}
	}
	return av.ListValue(), nil
}

func inferSet(av AttributeValue) (AttributeValue, error) {
	switch av.Kind() {
	case KindStringSet, KindNumberSet, KindBinarySet:
		return av, nil
	}
	elems, err := setElems(av)
	if err != nil {
		return AttributeValue{}, err
	}
	if len(elems) == 0 {
		return AttributeValue{}, &Error{Kind: ErrSetEmpty}
	}

	kind := elems[0].Kind()
	switch kind {
	case KindString, KindNumber, KindBinary:
	default:
		e := elems[0]
		return AttributeValue{}, &Error{Kind: ErrSetInvalidItem, Value: &e}
	}
	for _, e := range elems[1:] {
		if e.Kind() != kind {
			return AttributeValue{}, &Error{Kind: ErrSetNotHomogenous, Value: &e}
		}
	}

	switch kind {
	case KindString:
		ss := make([]string, len(elems))
		for i, e := range elems {
			ss[i] = e.StringValue()
		}
		return NewStringSet(ss), nil
	case KindNumber:
		ns := make([]string, len(elems))
		for i, e := range elems {
			ns[i] = e.NumberValue()
		}
		return NewNumberSet(ns), nil
	default:
		bs := make([][]byte, len(elems))
		for i, e := range elems {
			bs[i] = e.BinaryValue()
		}
		return NewBinarySet(bs), nil
	}
}
