// Package lambdaevent converts between dynamoval attribute values and
// the attribute value representation carried by Lambda DynamoDB
// stream events.
//
// Stream records deliver item images as
// [github.com/aws/aws-lambda-go/events.DynamoDBAttributeValue], a
// distinct type from the SDK client's representation. The conversions
// here let a stream handler decode old and new images with
// [github.com/zenlist/dynamoval.Unmarshal].
package lambdaevent

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/zenlist/dynamoval"
)

// ToAttributeValue converts av to the Lambda event representation.
func ToAttributeValue(av dynamoval.AttributeValue) events.DynamoDBAttributeValue {
	switch av.Kind() {
	case dynamoval.KindNumber:
		return events.NewNumberAttribute(av.NumberValue())
	case dynamoval.KindString:
		return events.NewStringAttribute(av.StringValue())
	case dynamoval.KindBool:
		return events.NewBooleanAttribute(av.BoolValue())
	case dynamoval.KindBinary:
		return events.NewBinaryAttribute(av.BinaryValue())
	case dynamoval.KindNull:
		return events.NewNullAttribute()
	case dynamoval.KindMap:
		m := make(map[string]events.DynamoDBAttributeValue, len(av.MapValue()))
		for k, e := range av.MapValue() {
			m[k] = ToAttributeValue(e)
		}
		return events.NewMapAttribute(m)
	case dynamoval.KindList:
		l := make([]events.DynamoDBAttributeValue, len(av.ListValue()))
		for i, e := range av.ListValue() {
			l[i] = ToAttributeValue(e)
		}
		return events.NewListAttribute(l)
	case dynamoval.KindStringSet:
		return events.NewStringSetAttribute(av.StringSetValue())
	case dynamoval.KindNumberSet:
		return events.NewNumberSetAttribute(av.NumberSetValue())
	case dynamoval.KindBinarySet:
		return events.NewBinarySetAttribute(av.BinarySetValue())
	}
	panic(fmt.Sprintf("cannot convert %v attribute value", av.Kind()))
}

// FromAttributeValue converts the Lambda event representation to a
// dynamoval attribute value.
func FromAttributeValue(av events.DynamoDBAttributeValue) dynamoval.AttributeValue {
	switch av.DataType() {
	case events.DataTypeNumber:
		return dynamoval.NewNumber(av.Number())
	case events.DataTypeString:
		return dynamoval.NewString(av.String())
	case events.DataTypeBoolean:
		return dynamoval.NewBool(av.Boolean())
	case events.DataTypeBinary:
		return dynamoval.NewBinary(av.Binary())
	case events.DataTypeNull:
		return dynamoval.NewNull()
	case events.DataTypeMap:
		m := make(map[string]dynamoval.AttributeValue, len(av.Map()))
		for k, e := range av.Map() {
			m[k] = FromAttributeValue(e)
		}
		return dynamoval.NewMap(m)
	case events.DataTypeList:
		l := make([]dynamoval.AttributeValue, len(av.List()))
		for i, e := range av.List() {
			l[i] = FromAttributeValue(e)
		}
		return dynamoval.NewList(l)
	case events.DataTypeStringSet:
		return dynamoval.NewStringSet(av.StringSet())
	case events.DataTypeNumberSet:
		return dynamoval.NewNumberSet(av.NumberSet())
	case events.DataTypeBinarySet:
		return dynamoval.NewBinarySet(av.BinarySet())
	}
	panic(fmt.Sprintf("unknown event attribute data type %v", av.DataType()))
}

// ToItem converts an item to the Lambda event map representation.
func ToItem(item dynamoval.Item) map[string]events.DynamoDBAttributeValue {
	out := make(map[string]events.DynamoDBAttributeValue, len(item))
	for k, av := range item {
		out[k] = ToAttributeValue(av)
	}
	return out
}

// FromItem converts the Lambda event map representation, as carried
// in a stream record's Keys, NewImage, or OldImage, to an item.
func FromItem(item map[string]events.DynamoDBAttributeValue) dynamoval.Item {
	out := make(dynamoval.Item, len(item))
	for k, av := range item {
		out[k] = FromAttributeValue(av)
	}
	return out
}

// MarshalItem encodes v as an item in the Lambda event
// representation.
func MarshalItem(v any) (map[string]events.DynamoDBAttributeValue, error) {
	item, err := dynamoval.MarshalItem(v)
	if err != nil {
		return nil, err
	}
	return ToItem(item), nil
}

// UnmarshalItem decodes an item image from a stream record into the
// value pointed to by out.
func UnmarshalItem(item map[string]events.DynamoDBAttributeValue, out any) error {
	return dynamoval.UnmarshalItem(FromItem(item), out)
}
