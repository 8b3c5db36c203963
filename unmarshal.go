package dynamoval

import (
	"encoding"
	"reflect"
	"strconv"
)

// Unmarshal decodes av into the value pointed to by out. If out is
// nil or not a pointer, Unmarshal returns an error.
//
// Generally, Unmarshal applies the inverse of the rules used by
// [Marshal]. If an encountered value implements [Unmarshaler],
// Unmarshal calls UnmarshalDynamo to decode it. Types implementing
// [Unmarshaler] must do so with a pointer receiver; a value-receiver
// implementation would silently discard the result and is refused.
//
// Otherwise, Unmarshal uses the following type-dependent rules. Each
// target shape demands a matching source shape and fails otherwise
// with an error identifying the expectation and the path to the
// mismatched value.
//
// Integer and float targets parse the text of a number value. String
// targets read string values. Bool targets read boolean values.
// []byte targets read binary values.
//
// Pointer targets treat the null value as nil; any other source
// allocates and decodes into the pointed-to value.
//
// Slice and array targets accept any of the four sequence shapes:
// list elements decode recursively, string-set and number-set
// elements decode as strings and numbers, binary-set elements as raw
// bytes.
//
// Struct targets accept a map (decoded by field name; missing fields
// are left at their zero value, unknown entries are ignored) or a
// list (decoded positionally, in field declaration order). A struct
// type with no encodable fields is a unit and demands the null value.
//
// Map targets drain the source map entry by entry; each key is
// decoded through the restricted key protocol (string kinds, integer
// kinds, [encoding.TextUnmarshaler], [Char], or unit [Variant]).
//
// Targets of type any decode self-describingly: numbers probe int64,
// then uint64, then float64; maps become map[string]any; lists and
// number sets become []any; string sets []string; binary sets
// [][]byte; null becomes nil.
//
// [AttributeValue] and [Item] targets receive the source unchanged.
func Unmarshal(av AttributeValue, out any) error {
	return unmarshalPath(av, out, nil)
}

// UnmarshalItem decodes item into the value pointed to by out, which
// is typically a pointer to a struct or map.
func UnmarshalItem(item Item, out any) error {
	return Unmarshal(NewMap(item), out)
}

// UnmarshalItems decodes a sequence of items into a slice of T. A
// failure in any item aborts the whole conversion; the error's path
// starts with the item's index.
func UnmarshalItems[T any](items []Item) ([]T, error) {
	out := make([]T, len(items))
	for i, item := range items {
		path := &pathNode{kind: pathIndex, index: i}
		if err := unmarshalPath(NewMap(item), &out[i], path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func unmarshalPath(av AttributeValue, out any, path *pathNode) error {
	if out == nil {
		return errMessage("can't unmarshal into nil interface")
	}
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Pointer {
		return errMessage("can't unmarshal into a non-pointer")
	}
	if val.IsNil() {
		return errMessage("can't unmarshal into a nil pointer")
	}
	return decoderFor(val.Type().Elem())(av, val.Elem(), path)
}

// Unmarshaler is the interface implemented by types that can decode
// themselves from an AttributeValue. UnmarshalDynamo must have a
// pointer receiver.
type Unmarshaler interface {
	UnmarshalDynamo(av AttributeValue) error
}

type decoderFunc func(av AttributeValue, v reflect.Value, path *pathNode) error

var (
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

var decoders cache[decoderFunc]

func init() {
	// This needs to be an init func to break the initialization cycle
	// between the cache and the calls to the cache within
	// uncachedTypeDecoder.
	decoders.Init(uncachedTypeDecoder, func(t reflect.Type) decoderFunc {
		return func(av AttributeValue, v reflect.Value, path *pathNode) error {
			return decoders.Get(t)(av, v, path)
		}
	})
}

func decoderFor(t reflect.Type) decoderFunc { return decoders.Get(t) }

func newErrDecoder(err error) decoderFunc {
	return func(AttributeValue, reflect.Value, *pathNode) error {
		return err
	}
}

func uncachedTypeDecoder(t reflect.Type) decoderFunc {
	switch t {
	case attributeType:
		return func(av AttributeValue, v reflect.Value, _ *pathNode) error {
			v.Set(reflect.ValueOf(av))
			return nil
		}
	case itemType:
		return func(av AttributeValue, v reflect.Value, path *pathNode) error {
			if av.Kind() != KindMap {
				return errAt(ErrExpectedMap, path, av)
			}
			m := av.MapValue()
			if m == nil {
				m = map[string]AttributeValue{}
			}
			v.Set(reflect.ValueOf(Item(m)))
			return nil
		}
	case variantType:
		return decodeVariant
	case charType:
		return decodeChar
	}

	// Only Unmarshalers with pointer receivers are usable: a value
	// receiver would silently discard the result of the
	// UnmarshalDynamo call and lead to confusing bugs.
	isPtr := t.Kind() == reflect.Pointer
	if t.Implements(unmarshalerType) {
		if !isPtr || t.Elem().Implements(unmarshalerType) {
			return newErrDecoder(errMessage("refusing to use the Unmarshaler implementation of %s: UnmarshalDynamo must use a pointer receiver", t))
		}
		return newUnmarshalerDecoder(t)
	} else if !isPtr && reflect.PointerTo(t).Implements(unmarshalerType) {
		// Unmarshal only hands us addressable values, so we can take
		// the address and use the pointer implementation.
		return newAddrUnmarshalerDecoder(t)
	}

	if !isPtr && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return newTextDecoder()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return newPtrDecoder(t)
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return newAnyDecoder()
		}
	case reflect.Bool:
		return newBoolDecoder()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return newIntDecoder(t)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return newUintDecoder(t)
	case reflect.Float32:
		return newFloatDecoder(32)
	case reflect.Float64:
		return newFloatDecoder(64)
	case reflect.String:
		return newStringDecoder()
	case reflect.Slice, reflect.Array:
		return newSliceDecoder(t)
	case reflect.Struct:
		return newStructDecoder(t)
	case reflect.Map:
		return newMapDecoder(t)
	}
	return newErrDecoder(errMessage("cannot decode a DynamoDB attribute value into %s", t))
}

func newAddrUnmarshalerDecoder(t reflect.Type) decoderFunc {
	ptr := newUnmarshalerDecoder(reflect.PointerTo(t))
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		return ptr(av, v.Addr(), path)
	}
}

func newUnmarshalerDecoder(t reflect.Type) decoderFunc {
	return func(av AttributeValue, v reflect.Value, _ *pathNode) error {
		if v.IsNil() {
			v.Set(reflect.New(t.Elem()))
		}
		return v.Interface().(Unmarshaler).UnmarshalDynamo(av)
	}
}

func newTextDecoder() decoderFunc {
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindString {
			return errAt(ErrExpectedString, path, av)
		}
		u := v.Addr().Interface().(encoding.TextUnmarshaler)
		if err := u.UnmarshalText([]byte(av.StringValue())); err != nil {
			return errMessage("unmarshaling %s text: %v", v.Type(), err)
		}
		return nil
	}
}

func newPtrDecoder(t reflect.Type) decoderFunc {
	elem := t.Elem()
	elemDec := decoderFor(elem)
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		// A null source is an absent optional.
		if av.IsNull() {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			p := reflect.New(elem)
			if err := elemDec(av, p.Elem(), path); err != nil {
				return err
			}
			v.Set(p)
			return nil
		}
		return elemDec(av, v.Elem(), path)
	}
}

func newBoolDecoder() decoderFunc {
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindBool {
			return errAt(ErrExpectedBool, path, av)
		}
		v.SetBool(av.BoolValue())
		return nil
	}
}

func newIntDecoder(t reflect.Type) decoderFunc {
	bits := t.Bits()
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindNumber {
			return errAt(ErrExpectedNumber, path, av)
		}
		n, err := strconv.ParseInt(av.NumberValue(), 10, bits)
		if err != nil {
			return errParse(ErrFailedToParseInt, path, av.NumberValue(), err)
		}
		v.SetInt(n)
		return nil
	}
}

func newUintDecoder(t reflect.Type) decoderFunc {
	bits := t.Bits()
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindNumber {
			return errAt(ErrExpectedNumber, path, av)
		}
		n, err := strconv.ParseUint(av.NumberValue(), 10, bits)
		if err != nil {
			return errParse(ErrFailedToParseInt, path, av.NumberValue(), err)
		}
		v.SetUint(n)
		return nil
	}
}

func newFloatDecoder(bits int) decoderFunc {
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindNumber {
			return errAt(ErrExpectedNumber, path, av)
		}
		f, err := strconv.ParseFloat(av.NumberValue(), bits)
		if err != nil {
			return errParse(ErrFailedToParseFloat, path, av.NumberValue(), err)
		}
		v.SetFloat(f)
		return nil
	}
}

func newStringDecoder() decoderFunc {
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindString {
			return errAt(ErrExpectedString, path, av)
		}
		v.SetString(av.StringValue())
		return nil
	}
}

// seqElems adapts the four sequence shapes to a single element
// stream: list elements pass through, string-set and number-set
// elements are re-framed as string and number values, binary-set
// elements as binary values.
func seqElems(av AttributeValue) ([]AttributeValue, bool) {
	switch av.Kind() {
	case KindList:
		return av.ListValue(), true
	case KindStringSet:
		elems := make([]AttributeValue, len(av.StringSetValue()))
		for i, s := range av.StringSetValue() {
			elems[i] = NewString(s)
		}
		return elems, true
	case KindNumberSet:
		elems := make([]AttributeValue, len(av.NumberSetValue()))
		for i, n := range av.NumberSetValue() {
			elems[i] = NewNumber(n)
		}
		return elems, true
	case KindBinarySet:
		elems := make([]AttributeValue, len(av.BinarySetValue()))
		for i, b := range av.BinarySetValue() {
			elems[i] = NewBinary(b)
		}
		return elems, true
	}
	return nil, false
}

func newSliceDecoder(t reflect.Type) decoderFunc {
	if t.Elem().Kind() == reflect.Uint8 {
		// Fast path for []byte and byte arrays.
		if t.Kind() == reflect.Slice {
			return func(av AttributeValue, v reflect.Value, path *pathNode) error {
				if av.Kind() != KindBinary {
					return errAt(ErrExpectedBytes, path, av)
				}
				v.SetBytes(append([]byte(nil), av.BinaryValue()...))
				return nil
			}
		}
		return func(av AttributeValue, v reflect.Value, path *pathNode) error {
			if av.Kind() != KindBinary {
				return errAt(ErrExpectedBytes, path, av)
			}
			if len(av.BinaryValue()) != v.Len() {
				return errMessage("cannot decode %d bytes into %s", len(av.BinaryValue()), t)
			}
			reflect.Copy(v, reflect.ValueOf(av.BinaryValue()))
			return nil
		}
	}

	elemDec := decoderFor(t.Elem())
	isArray := t.Kind() == reflect.Array

	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		elems, ok := seqElems(av)
		if !ok {
			return errAt(ErrExpectedSeq, path, av)
		}
		if isArray {
			if len(elems) != v.Len() {
				return errMessage("cannot decode %d elements into %s", len(elems), t)
			}
		} else {
			v.Set(reflect.MakeSlice(t, len(elems), len(elems)))
		}
		for i, elem := range elems {
			node := pathNode{parent: path, kind: pathIndex, index: i}
			if err := elemDec(elem, v.Index(i), &node); err != nil {
				return err
			}
		}
		return nil
	}
}

func newStructDecoder(t reflect.Type) decoderFunc {
	fs, err := getStructInfo(t)
	if err != nil {
		return newErrDecoder(errMessage("%v", err))
	}

	// A struct with no encodable fields is a unit and demands null.
	if len(fs.Fields) == 0 {
		kind := ErrExpectedUnit
		if t.Name() != "" {
			kind = ErrExpectedUnitStruct
		}
		return func(av AttributeValue, _ reflect.Value, path *pathNode) error {
			if !av.IsNull() {
				return errAt(kind, path, av)
			}
			return nil
		}
	}

	type fieldDecoder struct {
		f   *structField
		dec decoderFunc
	}
	var frags []fieldDecoder
	for _, f := range fs.Fields {
		frags = append(frags, fieldDecoder{f, decoderFor(f.Type)})
	}

	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		// A list source decodes positionally, as if the struct were a
		// tuple. Anything else must be a map keyed by field name.
		if av.Kind() == KindList {
			elems := av.ListValue()
			for i, frag := range frags {
				if i >= len(elems) {
					break
				}
				node := pathNode{parent: path, kind: pathIndex, index: i}
				fv := frag.f.GetWithAlloc(v)
				if err := frag.dec(elems[i], fv, &node); err != nil {
					return err
				}
			}
			return nil
		}
		if av.Kind() != KindMap {
			return errAt(ErrExpectedMap, path, av)
		}
		m := av.MapValue()
		for _, frag := range frags {
			fav, ok := m[frag.f.Name]
			if !ok {
				continue
			}
			node := pathNode{parent: path, kind: pathField, name: frag.f.Name}
			fv := frag.f.GetWithAlloc(v)
			if err := frag.dec(fav, fv, &node); err != nil {
				return err
			}
		}
		return nil
	}
}

func newMapDecoder(t reflect.Type) decoderFunc {
	kt := t.Key()
	kDec := keyDecoderFor(kt)
	vDec := decoderFor(t.Elem())

	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		if av.Kind() != KindMap {
			return errAt(ErrExpectedMap, path, av)
		}
		src := av.MapValue()
		if v.IsNil() {
			v.Set(reflect.MakeMapWithSize(t, len(src)))
		} else {
			v.Clear()
		}

		key := reflect.New(kt)
		val := reflect.New(t.Elem())
		for k, entry := range src {
			node := pathNode{parent: path, kind: pathField, name: k}
			key.Elem().SetZero()
			val.Elem().SetZero()
			if err := kDec(k, key.Elem(), &node); err != nil {
				return err
			}
			if err := vDec(entry, val.Elem(), &node); err != nil {
				return err
			}
			v.SetMapIndex(key.Elem(), val.Elem())
		}
		return nil
	}
}

// keyDecoderFunc decodes a map key from its text form.
type keyDecoderFunc func(key string, v reflect.Value, path *pathNode) error

// keyDecoderFor returns the restricted decoder used for map keys,
// mirroring the key encoder's capability set: string kinds, integer
// kinds (parsed from the key text), [Char], [encoding.TextUnmarshaler]
// implementations, and [Variant] (as a unit variant named by the key).
func keyDecoderFor(t reflect.Type) keyDecoderFunc {
	if t == variantType {
		return func(key string, v reflect.Value, _ *pathNode) error {
			v.Set(reflect.ValueOf(Variant{Name: key}))
			return nil
		}
	}
	if t == charType {
		return func(key string, v reflect.Value, path *pathNode) error {
			r, ok := singleRune(key)
			if !ok {
				return errAt(ErrExpectedChar, path, NewString(key))
			}
			v.SetInt(int64(r))
			return nil
		}
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return func(key string, v reflect.Value, _ *pathNode) error {
			u := v.Addr().Interface().(encoding.TextUnmarshaler)
			if err := u.UnmarshalText([]byte(key)); err != nil {
				return errMessage("unmarshaling %s key text: %v", v.Type(), err)
			}
			return nil
		}
	}
	switch {
	case t.Kind() == reflect.String:
		return func(key string, v reflect.Value, _ *pathNode) error {
			v.SetString(key)
			return nil
		}
	case intKinds.Has(t.Kind()):
		bits := t.Bits()
		return func(key string, v reflect.Value, path *pathNode) error {
			n, err := strconv.ParseInt(key, 10, bits)
			if err != nil {
				return errParse(ErrFailedToParseInt, path, key, err)
			}
			v.SetInt(n)
			return nil
		}
	case uintKinds.Has(t.Kind()):
		bits := t.Bits()
		return func(key string, v reflect.Value, path *pathNode) error {
			n, err := strconv.ParseUint(key, 10, bits)
			if err != nil {
				return errParse(ErrFailedToParseInt, path, key, err)
			}
			v.SetUint(n)
			return nil
		}
	}
	return func(_ string, _ reflect.Value, path *pathNode) error {
		return errAtNoValue(ErrKeyMustBeAString, path)
	}
}

func newAnyDecoder() decoderFunc {
	return func(av AttributeValue, v reflect.Value, path *pathNode) error {
		out, err := decodeAny(av, path)
		if err != nil {
			return err
		}
		if out == nil {
			v.SetZero()
			return nil
		}
		v.Set(reflect.ValueOf(out))
		return nil
	}
}

// decodeAny decodes self-describingly: the natural Go shape is
// inferred from the source alone.
func decodeAny(av AttributeValue, path *pathNode) (any, error) {
	switch av.Kind() {
	case KindNumber:
		return probeNumber(av.NumberValue(), path)
	case KindString:
		return av.StringValue(), nil
	case KindBool:
		return av.BoolValue(), nil
	case KindBinary:
		return av.BinaryValue(), nil
	case KindNull:
		return nil, nil
	case KindMap:
		m := make(map[string]any, len(av.MapValue()))
		for k, entry := range av.MapValue() {
			node := pathNode{parent: path, kind: pathField, name: k}
			out, err := decodeAny(entry, &node)
			if err != nil {
				return nil, err
			}
			m[k] = out
		}
		return m, nil
	case KindList:
		l := make([]any, len(av.ListValue()))
		for i, e := range av.ListValue() {
			node := pathNode{parent: path, kind: pathIndex, index: i}
			out, err := decodeAny(e, &node)
			if err != nil {
				return nil, err
			}
			l[i] = out
		}
		return l, nil
	case KindStringSet:
		return append([]string(nil), av.StringSetValue()...), nil
	case KindNumberSet:
		l := make([]any, len(av.NumberSetValue()))
		for i, n := range av.NumberSetValue() {
			node := pathNode{parent: path, kind: pathIndex, index: i}
			out, err := probeNumber(n, &node)
			if err != nil {
				return nil, err
			}
			l[i] = out
		}
		return l, nil
	case KindBinarySet:
		return append([][]byte(nil), av.BinarySetValue()...), nil
	}
	return nil, errAtNoValue(ErrExpectedSeq, path)
}

// probeNumber infers the natural Go type of a number's text: a value
// that fits in int64 is an int64, else uint64, else float64. Text
// that parses as none of the three fails with a float parse error.
func probeNumber(text string, path *pathNode) (any, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errParse(ErrFailedToParseFloat, path, text, err)
	}
	return f, nil
}
