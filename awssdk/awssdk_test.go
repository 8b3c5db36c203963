package awssdk

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
	"github.com/zenlist/dynamoval"
)

var cmpAttr = cmp.Comparer(dynamoval.AttributeValue.Equal)

func TestConvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		av   dynamoval.AttributeValue
	}{
		{"number", dynamoval.NewNumber("123.45")},
		{"string", dynamoval.NewString("fish")},
		{"bool", dynamoval.NewBool(true)},
		{"binary", dynamoval.NewBinary([]byte{1, 2})},
		{"null", dynamoval.NewNull()},
		{"map", dynamoval.NewMap(map[string]dynamoval.AttributeValue{
			"k": dynamoval.NewNumber("1"),
		})},
		{"list", dynamoval.NewList([]dynamoval.AttributeValue{
			dynamoval.NewString("a"),
			dynamoval.NewNull(),
		})},
		{"string set", dynamoval.NewStringSet([]string{"a", "b"})},
		{"number set", dynamoval.NewNumberSet([]string{"1", "2"})},
		{"binary set", dynamoval.NewBinarySet([][]byte{[]byte("x")})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			back := FromAttributeValue(ToAttributeValue(tc.av))
			if diff := cmp.Diff(back, tc.av, cmpAttr); diff != "" {
				t.Fatalf("round trip changed value (-got+want):\n%s", diff)
			}
		})
	}
}

func TestConvertShapes(t *testing.T) {
	got := ToAttributeValue(dynamoval.NewMap(map[string]dynamoval.AttributeValue{
		"n": dynamoval.NewNumber("1"),
	}))
	m, ok := got.(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("got %T, want *types.AttributeValueMemberM", got)
	}
	n, ok := m.Value["n"].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("got %T, want *types.AttributeValueMemberN", m.Value["n"])
	}
	if n.Value != "1" {
		t.Fatalf("got %q, want %q", n.Value, "1")
	}
}

type record struct {
	ID     string
	Count  int
	Active bool
	Tags   []string
}

// TestAgainstAttributevalue checks that simple shapes encode the same
// way as the SDK's own attributevalue marshaler.
func TestAgainstAttributevalue(t *testing.T) {
	in := record{ID: "r-1", Count: 42, Active: true, Tags: []string{"a", "b"}}

	sdkItem, err := attributevalue.MarshalMap(in)
	if err != nil {
		t.Fatalf("attributevalue marshal failed: %v", err)
	}
	ours, err := dynamoval.MarshalItem(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if diff := cmp.Diff(FromItem(sdkItem), ours, cmpAttr); diff != "" {
		t.Fatalf("encodings disagree (-sdk+ours):\n%s", diff)
	}
}

func TestMarshalUnmarshalItem(t *testing.T) {
	in := record{ID: "r-1", Count: 7, Tags: []string{"x"}}
	item, err := MarshalItem(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out record
	if err := UnmarshalItem(item, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(out, in); diff != "" {
		t.Fatalf("round trip changed value (-got+want):\n%s", diff)
	}
}

func TestUnmarshalItems(t *testing.T) {
	items := []map[string]types.AttributeValue{
		{"ID": &types.AttributeValueMemberS{Value: "a"}},
		{"ID": &types.AttributeValueMemberS{Value: "b"}, "Count": &types.AttributeValueMemberN{Value: "2"}},
	}
	got, err := UnmarshalItems[record](items)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := []record{{ID: "a"}, {ID: "b", Count: 2}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("wrong decode (-got+want):\n%s", diff)
	}
}
