package dynamoval

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cmpAttr compares attribute values with AttributeValue.Equal, since
// cmp cannot look at unexported fields.
var cmpAttr = cmp.Comparer(AttributeValue.Equal)

func ptr[T any](v T) *T {
	return &v
}

// newZeroOf returns a pointer to a fresh zero value of v's type, for
// decoding into.
func newZeroOf(v any) reflect.Value {
	return reflect.New(reflect.TypeOf(v))
}

// wantKind fails the test unless err is an *Error of the given kind.
func wantKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("got nil error, want kind %d", kind)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("got %T (%v), want *Error", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("got error kind %d (%v), want kind %d", e.Kind, e, kind)
	}
	return e
}

// Simple is a struct with simple fields.
type Simple struct {
	A int16
	B bool
}

// Nested is a struct with a struct field.
type Nested struct {
	A byte
	B Simple
}

// Embedded is a struct that embeds another struct by value.
type Embedded struct {
	Simple
	C byte
}

// Embedded_P is a struct that embeds another struct by pointer.
type Embedded_P struct {
	*Simple
	C byte
}

// EmbeddedShadow is a struct that embeds another struct by value,
// with one of the embedded fields shadowed by an outer field.
type EmbeddedShadow struct {
	Simple
	B byte
}

// Tagged exercises the dynamo struct tag options.
type Tagged struct {
	A string `dynamo:"renamed"`
	B int    `dynamo:",omitempty"`
	C string `dynamo:"-"`
	D []string
}

// Unit has no encodable fields.
type Unit struct{}

// unit is an unnamed zero-field struct type, distinct from Unit for
// error reporting.
var unit struct{}

// SelfMarshalerVal implements Marshaler with a value receiver and
// Unmarshaler with a pointer receiver.
type SelfMarshalerVal struct {
	N int
}

func (s SelfMarshalerVal) MarshalDynamo() (AttributeValue, error) {
	return NewNumber(fmt.Sprint(s.N + 1)), nil
}

func (s *SelfMarshalerVal) UnmarshalDynamo(av AttributeValue) error {
	var n int
	if err := Unmarshal(av, &n); err != nil {
		return err
	}
	s.N = n - 1
	return nil
}

// SelfMarshalerPtr implements Marshaler and Unmarshaler with pointer
// receivers only.
type SelfMarshalerPtr struct {
	N int
}

func (s *SelfMarshalerPtr) MarshalDynamo() (AttributeValue, error) {
	return NewNumber(fmt.Sprint(s.N + 1)), nil
}

func (s *SelfMarshalerPtr) UnmarshalDynamo(av AttributeValue) error {
	var n int
	if err := Unmarshal(av, &n); err != nil {
		return err
	}
	s.N = n - 1
	return nil
}

// BadUnmarshaler implements Unmarshaler with a value receiver, which
// the decoder refuses.
type BadUnmarshaler struct{ N int }

func (b BadUnmarshaler) UnmarshalDynamo(AttributeValue) error { return nil }

// TextKey implements encoding.TextMarshaler and TextUnmarshaler, for
// use as a map key.
type TextKey struct {
	K string
}

func (k TextKey) MarshalText() ([]byte, error) {
	return []byte("key:" + k.K), nil
}

func (k *TextKey) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) < 4 || s[:4] != "key:" {
		return fmt.Errorf("malformed key %q", s)
	}
	k.K = s[4:]
	return nil
}
