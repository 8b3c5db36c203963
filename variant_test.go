package dynamoval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVariantMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   Variant
		want AttributeValue
	}{
		{"unit", Variant{Name: "On"}, NewString("On")},
		{"newtype", Variant{Name: "Count", Value: uint8(1)}, NewMap(map[string]AttributeValue{
			"Count": NewNumber("1"),
		})},
		{"struct payload", Variant{Name: "Point", Value: Simple{A: 1}}, NewMap(map[string]AttributeValue{
			"Point": NewMap(map[string]AttributeValue{
				"A": NewNumber("1"),
				"B": NewBool(false),
			}),
		})},
		{"list payload", Variant{Name: "Pair", Value: []int{1, 2}}, NewMap(map[string]AttributeValue{
			"Pair": NewList([]AttributeValue{NewNumber("1"), NewNumber("2")}),
		})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.in)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if diff := cmp.Diff(got, tc.want, cmpAttr); diff != "" {
				t.Fatalf("wrong encoding (-got+want):\n%s", diff)
			}
		})
	}
}

func TestVariantUnmarshal(t *testing.T) {
	var v Variant
	if err := Unmarshal(NewString("On"), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.Name != "On" || v.Value != nil {
		t.Fatalf("got %+v, want unit variant On", v)
	}

	av := NewMap(map[string]AttributeValue{"Count": NewNumber("1")})
	if err := Unmarshal(av, &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.Name != "Count" {
		t.Fatalf("got name %q, want %q", v.Name, "Count")
	}
	payload, ok := v.Value.(AttributeValue)
	if !ok || !payload.Equal(NewNumber("1")) {
		t.Fatalf("got payload %#v, want N(1)", v.Value)
	}
}

func TestVariantOf(t *testing.T) {
	av := NewMap(map[string]AttributeValue{"Count": NewNumber("7")})
	name, n, err := VariantOf[uint8](av)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if name != "Count" || n != 7 {
		t.Fatalf("got (%q, %d), want (Count, 7)", name, n)
	}

	name, n, err = VariantOf[uint8](NewString("Off"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if name != "Off" || n != 0 {
		t.Fatalf("got (%q, %d), want (Off, 0)", name, n)
	}
}

func TestVariantErrors(t *testing.T) {
	tests := []struct {
		name string
		av   AttributeValue
		kind ErrorKind
	}{
		{"empty map", NewMap(nil), ErrExpectedSingleKey},
		{"two entries", NewMap(map[string]AttributeValue{
			"A": NewNull(), "B": NewNull(),
		}), ErrExpectedSingleKey},
		{"number", NewNumber("1"), ErrExpectedEnum},
		{"list", NewList(nil), ErrExpectedEnum},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var v Variant
			wantKind(t, Unmarshal(tc.av, &v), tc.kind)
		})
	}
}

func TestVariantRoundTrip(t *testing.T) {
	in := Variant{Name: "Newtype", Value: uint8(1)}
	av, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	name, n, err := VariantOf[uint8](av)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if name != "Newtype" || n != 1 {
		t.Fatalf("got (%q, %d), want (Newtype, 1)", name, n)
	}
}

func TestCharRoundTrip(t *testing.T) {
	for _, c := range []Char{'a', 'é', '日'} {
		av, err := Marshal(c)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var back Char
		if err := Unmarshal(av, &back); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if back != c {
			t.Fatalf("round trip changed %q to %q", c, back)
		}
	}
}
