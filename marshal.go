package dynamoval

import (
	"encoding"
	"reflect"
	"strconv"
)

// Marshal returns the AttributeValue encoding of v.
//
// Marshal traverses the value v recursively. If an encountered value
// implements [Marshaler], Marshal calls MarshalDynamo on it to produce
// its encoding.
//
// Otherwise, Marshal uses the following type-dependent default
// encodings:
//
// Integer and float values encode as numbers, carried as decimal
// text. Bool values encode as booleans. String values encode as
// strings. []byte values and byte arrays encode as binary data.
//
// Nil pointers and nil interfaces encode as the null value. Non-nil
// pointers encode as the value pointed to.
//
// Slice and array values encode as lists. Struct values encode as
// maps keyed by field name; the "dynamo" struct tag renames a field
// (`dynamo:"name"`), skips it (`dynamo:"-"`), skips its zero value
// (`dynamo:",omitempty"`), or requests a set encoding for a sequence
// field (`dynamo:",stringset"`, `,numberset`, `,binaryset`, or `,set`
// to infer the kind). Embedded struct fields encode as if their inner
// exported fields were fields in the outer struct.
//
// A struct type with no encodable fields is a unit and encodes as the
// null value.
//
// Map values encode as maps. Keys are rendered as text through a
// restricted key encoding: integer kinds, string kinds, types
// implementing [encoding.TextMarshaler], and unit [Variant] values
// are accepted; every other key shape fails with a key-must-be-a-
// string error.
//
// [Variant], [Char], and the set wrapper values returned by [Set],
// [StringSet], [NumberSet], and [BinarySet] encode per their own
// documentation. [AttributeValue] and [Item] values pass through
// unchanged.
//
// Types implementing [encoding.TextMarshaler] (and not [Marshaler])
// encode as strings.
//
// Channel, function, complex, and unsafe-pointer values cannot be
// encoded and cause Marshal to return an error.
func Marshal(v any) (AttributeValue, error) {
	if v == nil {
		return NewNull(), nil
	}
	val := reflect.ValueOf(v)
	return encoderFor(val.Type())(val)
}

// MarshalItem returns the Item encoding of v, which must serialize as
// a map. Any other top-level shape fails with a not-map-like error.
func MarshalItem(v any) (Item, error) {
	av, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	if av.Kind() != KindMap {
		return nil, &Error{Kind: ErrNotMapLike, Value: &av}
	}
	m := av.MapValue()
	if m == nil {
		m = map[string]AttributeValue{}
	}
	return Item(m), nil
}

// Marshaler is the interface implemented by types that can marshal
// themselves to an AttributeValue.
type Marshaler interface {
	MarshalDynamo() (AttributeValue, error)
}

type encoderFunc func(v reflect.Value) (AttributeValue, error)

var (
	marshalerType     = reflect.TypeFor[Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	attributeType     = reflect.TypeFor[AttributeValue]()
	itemType          = reflect.TypeFor[Item]()
	variantType       = reflect.TypeFor[Variant]()
	charType          = reflect.TypeFor[Char]()
	setValueType      = reflect.TypeFor[SetValue]()
)

var encoders cache[encoderFunc]

func init() {
	// This needs to be an init func to break the initialization cycle
	// between the cache and the calls to the cache within
	// uncachedTypeEncoder.
	encoders.Init(uncachedTypeEncoder, func(t reflect.Type) encoderFunc {
		return func(v reflect.Value) (AttributeValue, error) {
			return encoders.Get(t)(v)
		}
	})
}

func encoderFor(t reflect.Type) encoderFunc { return encoders.Get(t) }

func newErrEncoder(err error) encoderFunc {
	return func(reflect.Value) (AttributeValue, error) {
		return AttributeValue{}, err
	}
}

func uncachedTypeEncoder(t reflect.Type) encoderFunc {
	switch t {
	case attributeType:
		return func(v reflect.Value) (AttributeValue, error) {
			return v.Interface().(AttributeValue), nil
		}
	case itemType:
		return func(v reflect.Value) (AttributeValue, error) {
			return NewMap(v.Interface().(Item)), nil
		}
	case variantType:
		return encodeVariant
	case charType:
		return encodeChar
	case setValueType:
		return encodeSetValue
	}

	// If a value's pointer type implements Marshaler, we can avoid a
	// value copy by using it. But we can only use it for addressable
	// values, which requires an additional runtime check.
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(marshalerType) {
		return newCondAddrMarshalEncoder(t)
	} else if t.Implements(marshalerType) {
		return newMarshalEncoder()
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textMarshalerType) {
		if t.Implements(textMarshalerType) {
			return newTextEncoder()
		}
	} else if t.Implements(textMarshalerType) {
		return newTextEncoder()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return newPtrEncoder(t)
	case reflect.Interface:
		return newInterfaceEncoder()
	case reflect.Bool:
		return newBoolEncoder()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return newIntEncoder()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return newUintEncoder()
	case reflect.Float32:
		return newFloatEncoder(32)
	case reflect.Float64:
		return newFloatEncoder(64)
	case reflect.String:
		return newStringEncoder()
	case reflect.Slice, reflect.Array:
		return newSliceEncoder(t)
	case reflect.Struct:
		return newStructEncoder(t)
	case reflect.Map:
		return newMapEncoder(t)
	}
	return newErrEncoder(errMessage("cannot represent %s as a DynamoDB attribute value", t))
}

func newCondAddrMarshalEncoder(t reflect.Type) encoderFunc {
	ptr := newMarshalEncoder()
	if t.Implements(marshalerType) {
		val := newMarshalEncoder()
		return func(v reflect.Value) (AttributeValue, error) {
			if v.CanAddr() {
				return ptr(v.Addr())
			}
			return val(v)
		}
	}
	return func(v reflect.Value) (AttributeValue, error) {
		if !v.CanAddr() {
			return AttributeValue{}, errMessage("%s implements Marshaler with a pointer receiver, and the value is not addressable", t)
		}
		return ptr(v.Addr())
	}
}

func newMarshalEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return NewNull(), nil
		}
		return v.Interface().(Marshaler).MarshalDynamo()
	}
}

func newTextEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return NewNull(), nil
		}
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return AttributeValue{}, errMessage("marshaling %s text: %v", v.Type(), err)
		}
		return NewString(string(text)), nil
	}
}

func newPtrEncoder(t reflect.Type) encoderFunc {
	elemEnc := encoderFor(t.Elem())
	return func(v reflect.Value) (AttributeValue, error) {
		if v.IsNil() {
			return NewNull(), nil
		}
		return elemEnc(v.Elem())
	}
}

func newInterfaceEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		if v.IsNil() {
			return NewNull(), nil
		}
		elem := v.Elem()
		return encoderFor(elem.Type())(elem)
	}
}

func newBoolEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		return NewBool(v.Bool()), nil
	}
}

func newIntEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		return NewNumber(strconv.FormatInt(v.Int(), 10)), nil
	}
}

func newUintEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		return NewNumber(strconv.FormatUint(v.Uint(), 10)), nil
	}
}

func newFloatEncoder(bits int) encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		return NewNumber(formatFloat(v.Float(), bits)), nil
	}
}

// formatFloat renders the shortest decimal text that round-trips,
// without exponent notation.
func formatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func newStringEncoder() encoderFunc {
	return func(v reflect.Value) (AttributeValue, error) {
		return NewString(v.String()), nil
	}
}

func newSliceEncoder(t reflect.Type) encoderFunc {
	if t.Elem().Kind() == reflect.Uint8 {
		// Fast path for []byte and byte arrays.
		if t.Kind() == reflect.Slice {
			return func(v reflect.Value) (AttributeValue, error) {
				return NewBinary(v.Bytes()), nil
			}
		}
		return func(v reflect.Value) (AttributeValue, error) {
			bs := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(bs), v)
			return NewBinary(bs), nil
		}
	}

	elemEnc := encoderFor(t.Elem())
	return func(v reflect.Value) (AttributeValue, error) {
		l := make([]AttributeValue, v.Len())
		for i := range v.Len() {
			av, err := elemEnc(v.Index(i))
			if err != nil {
				return AttributeValue{}, err
			}
			l[i] = av
		}
		return NewList(l), nil
	}
}

func newStructEncoder(t reflect.Type) encoderFunc {
	fs, err := getStructInfo(t)
	if err != nil {
		return newErrEncoder(errMessage("%v", err))
	}

	// A struct with no encodable fields is a unit value.
	if len(fs.Fields) == 0 {
		return func(reflect.Value) (AttributeValue, error) {
			return NewNull(), nil
		}
	}

	type fieldEncoder struct {
		f   *structField
		enc encoderFunc
	}
	var frags []fieldEncoder
	for _, f := range fs.Fields {
		frags = append(frags, fieldEncoder{f, encoderFor(f.Type)})
	}

	return func(v reflect.Value) (AttributeValue, error) {
		m := make(map[string]AttributeValue, len(frags))
		for _, frag := range frags {
			fv := frag.f.GetWithZero(v)
			if frag.f.OmitEmpty && fv.IsZero() {
				continue
			}
			av, err := frag.enc(fv)
			if err != nil {
				return AttributeValue{}, err
			}
			if frag.f.Set != setNone {
				av, err = convertToSet(av, frag.f.Set)
				if err != nil {
					return AttributeValue{}, err
				}
			}
			m[frag.f.Name] = av
		}
		return NewMap(m), nil
	}
}

func newMapEncoder(t reflect.Type) encoderFunc {
	kEnc := keyEncoderFor(t.Key())
	vEnc := encoderFor(t.Elem())

	return func(v reflect.Value) (AttributeValue, error) {
		b := NewMapBuilder(v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key, err := kEnc(iter.Key())
			if err != nil {
				return AttributeValue{}, err
			}
			val, err := vEnc(iter.Value())
			if err != nil {
				return AttributeValue{}, err
			}
			b.set(key, val)
		}
		return b.Attribute(), nil
	}
}

// keyEncoderFunc renders a map key as text.
type keyEncoderFunc func(v reflect.Value) (string, error)

// keyEncoderFor returns the restricted encoder used for map keys.
// Only shapes that render losslessly as text are permitted: integer
// kinds, string kinds, [encoding.TextMarshaler] implementations, and
// unit [Variant] values.
func keyEncoderFor(t reflect.Type) keyEncoderFunc {
	if t == variantType {
		return func(v reflect.Value) (string, error) {
			vr := v.Interface().(Variant)
			if vr.Value != nil {
				return "", &Error{Kind: ErrKeyMustBeAString}
			}
			return vr.Name, nil
		}
	}
	if t == charType {
		return func(v reflect.Value) (string, error) {
			return string(rune(v.Int())), nil
		}
	}
	if t.Implements(textMarshalerType) {
		return func(v reflect.Value) (string, error) {
			if v.Kind() == reflect.Pointer && v.IsNil() {
				return "", &Error{Kind: ErrKeyMustBeAString}
			}
			text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return "", errMessage("marshaling %s key text: %v", v.Type(), err)
			}
			return string(text), nil
		}
	}
	switch {
	case t.Kind() == reflect.String:
		return func(v reflect.Value) (string, error) {
			return v.String(), nil
		}
	case intKinds.Has(t.Kind()):
		return func(v reflect.Value) (string, error) {
			return strconv.FormatInt(v.Int(), 10), nil
		}
	case uintKinds.Has(t.Kind()):
		return func(v reflect.Value) (string, error) {
			return strconv.FormatUint(v.Uint(), 10), nil
		}
	}
	return func(reflect.Value) (string, error) {
		return "", &Error{Kind: ErrKeyMustBeAString}
	}
}

// MapBuilder assembles a map attribute value incrementally. It
// mirrors the begin / N×(key, value) / end protocol used by
// serialization frameworks: [MapBuilder.Key] stages a key,
// [MapBuilder.Value] serializes and stores the matching value.
// Calling Key twice without an intervening Value, or Value before any
// Key, is reported as an error rather than a panic: it indicates a
// bug in the calling code, not bad data.
type MapBuilder struct {
	m       map[string]AttributeValue
	nextKey *string
}

// NewMapBuilder returns a builder with capacity for n entries. The
// declared length is only a hint.
func NewMapBuilder(n int) *MapBuilder {
	return &MapBuilder{m: make(map[string]AttributeValue, n)}
}

// Key serializes k through the restricted map-key encoding and stages
// it for the next call to Value.
func (b *MapBuilder) Key(k any) error {
	if b.nextKey != nil {
		return &Error{Kind: ErrSerializeMapKeyCalledTwice}
	}
	if k == nil {
		return &Error{Kind: ErrKeyMustBeAString}
	}
	kv := reflect.ValueOf(k)
	key, err := keyEncoderFor(kv.Type())(kv)
	if err != nil {
		return err
	}
	b.nextKey = &key
	return nil
}

// Value serializes v and stores it under the staged key.
func (b *MapBuilder) Value(v any) error {
	if b.nextKey == nil {
		return &Error{Kind: ErrSerializeMapValueBeforeKey}
	}
	key := *b.nextKey
	b.nextKey = nil
	av, err := Marshal(v)
	if err != nil {
		return err
	}
	b.m[key] = av
	return nil
}

// Entry serializes and stores one key/value pair.
func (b *MapBuilder) Entry(k, v any) error {
	if err := b.Key(k); err != nil {
		return err
	}
	return b.Value(v)
}

func (b *MapBuilder) set(key string, av AttributeValue) {
	b.m[key] = av
}

// Attribute returns the accumulated entries as a map attribute value.
func (b *MapBuilder) Attribute() AttributeValue {
	return NewMap(b.m)
}

// Item returns the accumulated entries as an Item.
func (b *MapBuilder) Item() Item {
	return Item(b.m)
}
