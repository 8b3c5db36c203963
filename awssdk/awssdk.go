// Package awssdk converts between dynamoval attribute values and the
// attribute value representation used by the AWS SDK for Go v2
// dynamodb client.
//
// The SDK models the attribute value union as an interface with one
// member type per shape. The conversions here are lossless in both
// directions, so dynamoval can encode and decode items exchanged with
// [github.com/aws/aws-sdk-go-v2/service/dynamodb].
package awssdk

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/zenlist/dynamoval"
)

// ToAttributeValue converts av to the SDK's representation.
func ToAttributeValue(av dynamoval.AttributeValue) types.AttributeValue {
	switch av.Kind() {
	case dynamoval.KindNumber:
		return &types.AttributeValueMemberN{Value: av.NumberValue()}
	case dynamoval.KindString:
		return &types.AttributeValueMemberS{Value: av.StringValue()}
	case dynamoval.KindBool:
		return &types.AttributeValueMemberBOOL{Value: av.BoolValue()}
	case dynamoval.KindBinary:
		return &types.AttributeValueMemberB{Value: av.BinaryValue()}
	case dynamoval.KindNull:
		return &types.AttributeValueMemberNULL{Value: true}
	case dynamoval.KindMap:
		m := make(map[string]types.AttributeValue, len(av.MapValue()))
		for k, e := range av.MapValue() {
			m[k] = ToAttributeValue(e)
		}
		return &types.AttributeValueMemberM{Value: m}
	case dynamoval.KindList:
		l := make([]types.AttributeValue, len(av.ListValue()))
		for i, e := range av.ListValue() {
			l[i] = ToAttributeValue(e)
		}
		return &types.AttributeValueMemberL{Value: l}
	case dynamoval.KindStringSet:
		return &types.AttributeValueMemberSS{Value: av.StringSetValue()}
	case dynamoval.KindNumberSet:
		return &types.AttributeValueMemberNS{Value: av.NumberSetValue()}
	case dynamoval.KindBinarySet:
		return &types.AttributeValueMemberBS{Value: av.BinarySetValue()}
	}
	panic(fmt.Sprintf("cannot convert %v attribute value", av.Kind()))
}

// FromAttributeValue converts the SDK's representation to a dynamoval
// attribute value. It panics on a member type it does not know about,
// which can only happen if the SDK grows an eleventh shape.
func FromAttributeValue(av types.AttributeValue) dynamoval.AttributeValue {
	switch av := av.(type) {
	case *types.AttributeValueMemberN:
		return dynamoval.NewNumber(av.Value)
	case *types.AttributeValueMemberS:
		return dynamoval.NewString(av.Value)
	case *types.AttributeValueMemberBOOL:
		return dynamoval.NewBool(av.Value)
	case *types.AttributeValueMemberB:
		return dynamoval.NewBinary(av.Value)
	case *types.AttributeValueMemberNULL:
		return dynamoval.NewNull()
	case *types.AttributeValueMemberM:
		m := make(map[string]dynamoval.AttributeValue, len(av.Value))
		for k, e := range av.Value {
			m[k] = FromAttributeValue(e)
		}
		return dynamoval.NewMap(m)
	case *types.AttributeValueMemberL:
		l := make([]dynamoval.AttributeValue, len(av.Value))
		for i, e := range av.Value {
			l[i] = FromAttributeValue(e)
		}
		return dynamoval.NewList(l)
	case *types.AttributeValueMemberSS:
		return dynamoval.NewStringSet(av.Value)
	case *types.AttributeValueMemberNS:
		return dynamoval.NewNumberSet(av.Value)
	case *types.AttributeValueMemberBS:
		return dynamoval.NewBinarySet(av.Value)
	}
	panic(fmt.Sprintf("unknown SDK attribute value type %T", av))
}

// ToItem converts an item to the SDK's map representation.
func ToItem(item dynamoval.Item) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, av := range item {
		out[k] = ToAttributeValue(av)
	}
	return out
}

// FromItem converts the SDK's map representation to an item.
func FromItem(item map[string]types.AttributeValue) dynamoval.Item {
	out := make(dynamoval.Item, len(item))
	for k, av := range item {
		out[k] = FromAttributeValue(av)
	}
	return out
}

// MarshalItem encodes v as an item in the SDK's representation, ready
// to hand to PutItem.
func MarshalItem(v any) (map[string]types.AttributeValue, error) {
	item, err := dynamoval.MarshalItem(v)
	if err != nil {
		return nil, err
	}
	return ToItem(item), nil
}

// UnmarshalItem decodes an item in the SDK's representation, as
// returned by GetItem, into the value pointed to by out.
func UnmarshalItem(item map[string]types.AttributeValue, out any) error {
	return dynamoval.UnmarshalItem(FromItem(item), out)
}

// UnmarshalItems decodes a sequence of items in the SDK's
// representation, as returned by Query or Scan, into a slice of T.
func UnmarshalItems[T any](items []map[string]types.AttributeValue) ([]T, error) {
	converted := make([]dynamoval.Item, len(items))
	for i, item := range items {
		converted[i] = FromItem(item)
	}
	return dynamoval.UnmarshalItems[T](converted)
}
