package lambdaevent

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
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
			dynamoval.NewBool(false),
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

func TestUnmarshalStreamImage(t *testing.T) {
	type order struct {
		ID    string `dynamo:"id"`
		Total int    `dynamo:"total"`
		Items []string
	}
	image := map[string]events.DynamoDBAttributeValue{
		"id":    events.NewStringAttribute("o-1"),
		"total": events.NewNumberAttribute("99"),
		"Items": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("widget"),
		}),
	}

	var got order
	if err := UnmarshalItem(image, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := order{ID: "o-1", Total: 99, Items: []string{"widget"}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("wrong decode (-got+want):\n%s", diff)
	}
}

func TestMarshalItem(t *testing.T) {
	item, err := MarshalItem(map[string]any{"n": 1})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	n, ok := item["n"]
	if !ok || n.DataType() != events.DataTypeNumber || n.Number() != "1" {
		t.Fatalf("got %#v, want number attribute 1", item)
	}
}
