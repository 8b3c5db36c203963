package dynamoval

import (
	"encoding/json"
	"math"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshal(t *testing.T) {
	type testCase struct {
		name string
		in   any
		want AttributeValue
	}
	ok := func(name string, in any, want AttributeValue) testCase {
		return testCase{name, in, want}
	}

	tests := []testCase{
		ok("bool true", true, NewBool(true)),
		ok("bool false", false, NewBool(false)),

		ok("int", 42, NewNumber("42")),
		ok("int negative", -7, NewNumber("-7")),
		ok("int8", int8(-128), NewNumber("-128")),
		ok("uint64 max", uint64(math.MaxUint64), NewNumber("18446744073709551615")),
		ok("float", 123.45, NewNumber("123.45")),
		ok("float32", float32(1.5), NewNumber("1.5")),
		ok("float integral", 3.0, NewNumber("3")),

		ok("string", "fish", NewString("fish")),
		ok("string empty", "", NewString("")),

		ok("bytes", []byte{1, 2, 3}, NewBinary([]byte{1, 2, 3})),
		ok("byte array", [3]byte{1, 2, 3}, NewBinary([]byte{1, 2, 3})),

		ok("nil", nil, NewNull()),
		ok("nil ptr", (*int)(nil), NewNull()),
		ok("ptr", ptr(42), NewNumber("42")),
		ok("ptr ptr", ptr(ptr("x")), NewString("x")),

		ok("slice", []int{1, 2}, NewList([]AttributeValue{
			NewNumber("1"), NewNumber("2"),
		})),
		ok("slice empty", []int{}, NewList(nil)),
		ok("slice of any", []any{1, "a", true}, NewList([]AttributeValue{
			NewNumber("1"), NewString("a"), NewBool(true),
		})),
		ok("array", [2]string{"a", "b"}, NewList([]AttributeValue{
			NewString("a"), NewString("b"),
		})),

		ok("struct", Simple{A: 42, B: true}, NewMap(map[string]AttributeValue{
			"A": NewNumber("42"),
			"B": NewBool(true),
		})),
		ok("struct nested", Nested{A: 1, B: Simple{A: 2}}, NewMap(map[string]AttributeValue{
			"A": NewNumber("1"),
			"B": NewMap(map[string]AttributeValue{
				"A": NewNumber("2"),
				"B": NewBool(false),
			}),
		})),
		ok("struct embedded", Embedded{Simple{A: 1, B: true}, 2}, NewMap(map[string]AttributeValue{
			"A": NewNumber("1"),
			"B": NewBool(true),
			"C": NewNumber("2"),
		})),
		ok("struct embedded shadow", EmbeddedShadow{Simple{A: 1, B: true}, 66}, NewMap(map[string]AttributeValue{
			"A": NewNumber("1"),
			"B": NewNumber("66"),
		})),
		ok("struct embedded nil ptr", Embedded_P{nil, 2}, NewMap(map[string]AttributeValue{
			"A": NewNumber("0"),
			"B": NewBool(false),
			"C": NewNumber("2"),
		})),
		ok("struct tags", Tagged{A: "x", B: 0, C: "dropped", D: []string{"d"}}, NewMap(map[string]AttributeValue{
			"renamed": NewString("x"),
			"D":       NewList([]AttributeValue{NewString("d")}),
		})),
		ok("unit struct", Unit{}, NewNull()),

		ok("map", map[string]int{"a": 1, "b": 2}, NewMap(map[string]AttributeValue{
			"a": NewNumber("1"),
			"b": NewNumber("2"),
		})),
		ok("map int keys", map[int8]string{-1: "a", 2: "b"}, NewMap(map[string]AttributeValue{
			"-1": NewString("a"),
			"2":  NewString("b"),
		})),
		ok("map text keys", map[TextKey]int{{K: "a"}: 1}, NewMap(map[string]AttributeValue{
			"key:a": NewNumber("1"),
		})),
		ok("map variant keys", map[Variant]int{{Name: "On"}: 1}, NewMap(map[string]AttributeValue{
			"On": NewNumber("1"),
		})),
		ok("map char keys", map[Char]int{'x': 1}, NewMap(map[string]AttributeValue{
			"x": NewNumber("1"),
		})),

		ok("marshaler val", SelfMarshalerVal{N: 41}, NewNumber("42")),
		ok("marshaler ptr", &SelfMarshalerPtr{N: 41}, NewNumber("42")),
		ok("marshaler in struct", struct{ M SelfMarshalerVal }{SelfMarshalerVal{N: 1}},
			NewMap(map[string]AttributeValue{"M": NewNumber("2")})),

		ok("text marshaler", netip.MustParseAddr("10.0.0.1"), NewString("10.0.0.1")),
		ok("text marshaler in map", map[string]netip.Addr{"ip": netip.MustParseAddr("::1")},
			NewMap(map[string]AttributeValue{"ip": NewString("::1")})),

		ok("char", Char('é'), NewString("é")),
		ok("attribute passthrough", NewStringSet([]string{"a"}), NewStringSet([]string{"a"})),
		ok("item passthrough", Item{"k": NewNumber("1")}, NewMap(map[string]AttributeValue{
			"k": NewNumber("1"),
		})),
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.in)
			if err != nil {
				t.Fatalf("marshal failed: %v\n  val: %#v", err, tc.in)
			}
			if diff := cmp.Diff(got, tc.want, cmpAttr); diff != "" {
				t.Fatalf("wrong encoding (-got+want):\n%s", diff)
			}
		})
	}
}

func TestMarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"chan", make(chan int)},
		{"func", func() {}},
		{"complex", complex(1, 2)},
		{"map struct keys", map[Simple]int{{}: 1}},
		{"map float keys", map[float64]int{1.5: 1}},
		{"map payload variant key", map[Variant]int{{Name: "V", Value: 1}: 1}},
		{"chan in struct", struct{ C chan int }{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if av, err := Marshal(tc.in); err == nil {
				t.Fatalf("marshal succeeded, wanted error\n  val: %#v\n  got: %s", tc.in, av)
			}
		})
	}
}

func TestMarshalItem(t *testing.T) {
	item, err := MarshalItem(Simple{A: 1, B: true})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := Item{
		"A": NewNumber("1"),
		"B": NewBool(true),
	}
	if diff := cmp.Diff(item, want, cmpAttr); diff != "" {
		t.Fatalf("wrong item (-got+want):\n%s", diff)
	}

	if _, err := MarshalItem(42); err == nil {
		t.Fatal("marshaling a number as an item succeeded, wanted error")
	} else {
		wantKind(t, err, ErrNotMapLike)
	}
}

func TestMarshalNumberTextFidelity(t *testing.T) {
	// The attribute value must carry the exact decimal text, not a
	// float approximation, all the way to the wire.
	av, err := Marshal(123.45)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	data, err := json.Marshal(av)
	if err != nil {
		t.Fatalf("wire encode failed: %v", err)
	}
	if got, want := string(data), `{"N":"123.45"}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

// TestMarshalJSONEquivalence checks that marshaling a value directly
// agrees with marshaling the generic form of the same value after a
// trip through plain JSON. Binary shapes are excluded: JSON has no
// byte type.
func TestMarshalJSONEquivalence(t *testing.T) {
	type record struct {
		Name   string
		Score  float64
		Active bool
		Tags   []string
		Extra  map[string]string
	}
	in := record{
		Name:   "x",
		Score:  1.5,
		Active: true,
		Tags:   []string{"a"},
		Extra:  map[string]string{"k": "v"},
	}

	direct, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("json unmarshal failed: %v", err)
	}
	viaJSON, err := Marshal(generic)
	if err != nil {
		t.Fatalf("marshal of generic form failed: %v", err)
	}

	if diff := cmp.Diff(viaJSON, direct, cmpAttr); diff != "" {
		t.Fatalf("encodings disagree (-generic+direct):\n%s", diff)
	}
}

func TestMapBuilder(t *testing.T) {
	b := NewMapBuilder(2)
	if err := b.Entry("a", 1); err != nil {
		t.Fatalf("entry failed: %v", err)
	}
	if err := b.Key("b"); err != nil {
		t.Fatalf("key failed: %v", err)
	}
	wantKind(t, b.Key("c"), ErrSerializeMapKeyCalledTwice)
	if err := b.Value("two"); err != nil {
		t.Fatalf("value failed: %v", err)
	}
	wantKind(t, b.Value("three"), ErrSerializeMapValueBeforeKey)

	want := NewMap(map[string]AttributeValue{
		"a": NewNumber("1"),
		"b": NewString("two"),
	})
	if diff := cmp.Diff(b.Attribute(), want, cmpAttr); diff != "" {
		t.Fatalf("wrong map (-got+want):\n%s", diff)
	}
}
